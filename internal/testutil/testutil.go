// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"codeberg.org/dailygrind/web/internal/config"
	"codeberg.org/dailygrind/web/internal/database"
	"codeberg.org/dailygrind/web/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
)

const tokenSecret = "testutil-secret"

// NewTestDB creates an in-memory SQLite database for tests.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// SignToken returns an HS256 token whose subject is sub.
func SignToken(t *testing.T, sub any) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub}).
		SignedString([]byte(tokenSecret))
	require.NoError(t, err)
	return token
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewEchoContextWithHeaders creates an Echo context with custom headers.
func NewEchoContextWithHeaders(e *echo.Echo, method, path string, body io.Reader, headers map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

type fakeUser struct {
	password string
	user     models.User
}

type failure struct {
	message string
	status  int
}

// FakeAPI is an in-memory Daily Grind API served over httptest.
// Tokens are HS256 JWTs whose subject is the user id.
type FakeAPI struct {
	Server   *httptest.Server
	users    map[models.ID]*fakeUser
	failures map[string]failure
	tickets  []models.Ticket
	catalog  models.Catalog
	nextID   int
	requests int
	mu       sync.Mutex
}

// NewFakeAPI starts a fake API seeded with the default ticket catalog.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()

	f := &FakeAPI{
		users:    make(map[models.ID]*fakeUser),
		failures: make(map[string]failure),
		nextID:   100,
		catalog: models.Catalog{
			Types:      []models.Named{{ID: "1", Name: "Bug"}, {ID: "2", Name: "Feature"}},
			States:     []models.Named{{ID: "1", Name: "Todo"}, {ID: "2", Name: "In Progress"}, {ID: "3", Name: "Closed"}},
			Priorities: []models.Named{{ID: "1", Name: "High"}, {ID: "2", Name: "Medium"}, {ID: "3", Name: "Low"}},
		},
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(f.count, f.injectFailures)

	e.POST("/users/register", f.register)
	e.POST("/users/login", f.login)
	e.GET("/users", f.listUsers, f.requireToken)
	e.GET("/users/:id", f.getUser, f.requireToken)
	e.PUT("/users/:id", f.updateUser, f.requireToken)
	e.POST("/users/:id/profile-picture", f.uploadPicture, f.requireToken)

	e.GET("/tickets", f.listTickets, f.requireToken)
	e.GET("/tickets/types", f.table(func() any { return f.catalog.Types }), f.requireToken)
	e.GET("/tickets/states", f.table(func() any { return f.catalog.States }), f.requireToken)
	e.GET("/tickets/priorities", f.table(func() any { return f.catalog.Priorities }), f.requireToken)
	e.POST("/tickets", f.createTicket, f.requireToken)
	e.PUT("/tickets/:id", f.updateTicket, f.requireToken)
	e.DELETE("/tickets/:id", f.deleteTicket, f.requireToken)

	f.Server = httptest.NewServer(e)
	t.Cleanup(f.Server.Close)
	return f
}

// Config returns an API configuration pointing at the fake.
func (f *FakeAPI) Config() *config.APIConfig {
	return &config.APIConfig{BaseURL: f.Server.URL, Timeout: 5 * time.Second}
}

// AddUser registers a user directly and returns it.
func (f *FakeAPI) AddUser(email, password, displayName string) models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addUserLocked(email, password, displayName)
}

func (f *FakeAPI) addUserLocked(email, password, displayName string) models.User {
	f.nextID++
	u := models.User{
		ID:          models.IDFrom(f.nextID),
		Email:       email,
		DisplayName: displayName,
		Provider:    "local",
	}
	f.users[u.ID] = &fakeUser{user: u, password: password}
	f.catalog.Users = append(f.catalog.Users, u)
	return u
}

// User returns the stored user.
func (f *FakeAPI) User(id models.ID) (models.User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.User{}, false
	}
	return u.user, true
}

// Token returns a valid credential for the user.
func (f *FakeAPI) Token(t *testing.T, id models.ID) string {
	t.Helper()
	return SignToken(t, id.String())
}

// AddTicket stores a ticket, assigning an id when it has none.
func (f *FakeAPI) AddTicket(ticket models.Ticket) models.Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ticket.ID.IsZero() {
		f.nextID++
		ticket.ID = models.IDFrom(f.nextID)
	}
	f.tickets = append(f.tickets, ticket)
	return ticket
}

// Tickets returns a copy of the stored tickets.
func (f *FakeAPI) Tickets() []models.Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Ticket(nil), f.tickets...)
}

// Fail makes every request to "METHOD /path" answer with status and message.
// An empty message sends an empty body.
func (f *FakeAPI) Fail(method, path string, status int, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method+" "+path] = failure{status: status, message: message}
}

// Requests returns how many requests the fake has served.
func (f *FakeAPI) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func (f *FakeAPI) count(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		f.mu.Lock()
		f.requests++
		f.mu.Unlock()
		return next(c)
	}
}

func (f *FakeAPI) injectFailures(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		f.mu.Lock()
		fail, ok := f.failures[c.Request().Method+" "+c.Request().URL.Path]
		f.mu.Unlock()
		if !ok {
			return next(c)
		}
		if fail.message == "" {
			return c.NoContent(fail.status)
		}
		return c.JSON(fail.status, map[string]string{"message": fail.message})
	}
}

func (f *FakeAPI) requireToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, ok := strings.CutPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Missing token"})
		}
		token, err := jwt.Parse(raw, func(*jwt.Token) (any, error) { return []byte(tokenSecret), nil })
		if err != nil || !token.Valid {
			return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Invalid token"})
		}
		sub, _ := token.Claims.GetSubject()

		f.mu.Lock()
		_, known := f.users[models.ID(sub)]
		f.mu.Unlock()
		if !known {
			return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unknown user"})
		}
		c.Set("sub", models.ID(sub))
		return next(c)
	}
}

type credentials struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

func (f *FakeAPI) register(c echo.Context) error {
	var in credentials
	if err := c.Bind(&in); err != nil || in.Email == "" || in.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Email and password are required"})
	}

	f.mu.Lock()
	for _, u := range f.users {
		if strings.EqualFold(u.user.Email, in.Email) {
			f.mu.Unlock()
			return c.JSON(http.StatusConflict, map[string]string{"message": "Email already registered"})
		}
	}
	user := f.addUserLocked(in.Email, in.Password, in.DisplayName)
	f.mu.Unlock()

	return f.authResponse(c, http.StatusCreated, user)
}

func (f *FakeAPI) login(c echo.Context) error {
	var in credentials
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request"})
	}

	f.mu.Lock()
	var found *fakeUser
	for _, u := range f.users {
		if strings.EqualFold(u.user.Email, in.Email) && u.password == in.Password {
			found = u
			break
		}
	}
	f.mu.Unlock()

	if found == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
	}
	return f.authResponse(c, http.StatusOK, found.user)
}

func (f *FakeAPI) authResponse(c echo.Context, status int, user models.User) error {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": user.ID.String()}).
		SignedString([]byte(tokenSecret))
	if err != nil {
		return err
	}
	return c.JSON(status, map[string]any{"user": user, "token": token})
}

func (f *FakeAPI) listUsers(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return c.JSON(http.StatusOK, f.catalog.Users)
}

func (f *FakeAPI) ownUser(c echo.Context) (*fakeUser, error) {
	id := models.ID(c.Param("id"))
	if sub, _ := c.Get("sub").(models.ID); sub != id {
		return nil, c.JSON(http.StatusUnauthorized, map[string]string{"message": "Not your account"})
	}
	u, ok := f.users[id]
	if !ok {
		return nil, c.JSON(http.StatusNotFound, map[string]string{"message": "User not found"})
	}
	return u, nil
}

func (f *FakeAPI) getUser(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.ownUser(c)
	if u == nil {
		return err
	}
	return c.JSON(http.StatusOK, u.user)
}

func (f *FakeAPI) updateUser(c echo.Context) error {
	var patch models.UserPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid profile"})
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.ownUser(c)
	if u == nil {
		return err
	}
	u.user.Apply(&patch)
	f.syncCatalogUser(u.user)
	return c.JSON(http.StatusOK, patch)
}

func (f *FakeAPI) uploadPicture(c echo.Context) error {
	file, err := c.FormFile("profilePicture")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "No file uploaded"})
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	u, ferr := f.ownUser(c)
	if u == nil {
		return ferr
	}
	path := fmt.Sprintf("/uploads/%s/%s", u.user.ID, file.Filename)
	u.user.ProfilePicture = path
	f.syncCatalogUser(u.user)
	return c.JSON(http.StatusOK, map[string]string{"profilePicture": path})
}

func (f *FakeAPI) syncCatalogUser(user models.User) {
	for i := range f.catalog.Users {
		if f.catalog.Users[i].ID == user.ID {
			f.catalog.Users[i] = user
		}
	}
}

func (f *FakeAPI) table(get func() any) echo.HandlerFunc {
	return func(c echo.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		return c.JSON(http.StatusOK, get())
	}
}

func (f *FakeAPI) listTickets(c echo.Context) error {
	return c.JSON(http.StatusOK, f.Tickets())
}

func (f *FakeAPI) createTicket(c echo.Context) error {
	var in models.TicketInput
	if err := c.Bind(&in); err != nil || strings.TrimSpace(in.Title) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Title is required"})
	}
	ticket := f.AddTicket(ticketFrom(in))
	return c.JSON(http.StatusCreated, ticket)
}

func (f *FakeAPI) updateTicket(c echo.Context) error {
	var in models.TicketInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid ticket"})
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tickets {
		if f.tickets[i].ID.String() == c.Param("id") {
			updated := ticketFrom(in)
			updated.ID = f.tickets[i].ID
			updated.CreatedAt = f.tickets[i].CreatedAt
			f.tickets[i] = updated
			return c.JSON(http.StatusOK, updated)
		}
	}
	return c.JSON(http.StatusNotFound, map[string]string{"message": "Ticket not found"})
}

func (f *FakeAPI) deleteTicket(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tickets {
		if f.tickets[i].ID.String() == c.Param("id") {
			f.tickets = append(f.tickets[:i], f.tickets[i+1:]...)
			return c.NoContent(http.StatusNoContent)
		}
	}
	return c.JSON(http.StatusNotFound, map[string]string{"message": "Ticket not found"})
}

func ticketFrom(in models.TicketInput) models.Ticket {
	return models.Ticket{
		Title:       in.Title,
		Description: in.Description,
		TypeID:      in.TypeID,
		StateID:     in.StateID,
		PriorityID:  in.PriorityID,
		AssigneeID:  in.AssigneeID,
	}
}
