// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"codeberg.org/dailygrind/web/internal/i18n"
	"codeberg.org/dailygrind/web/internal/models"
	"codeberg.org/dailygrind/web/internal/templates"
	"github.com/labstack/echo/v4"
)

const profilePath = "/profile"

// ProfilePage renders the profile form.
func (h *Handlers) ProfilePage(c echo.Context) error {
	return Render(c, http.StatusOK, templates.Profile(templates.ProfileData{}))
}

// UpdateProfile saves the display name and email address.
// Empty fields are left unchanged.
func (h *Handlers) UpdateProfile(c echo.Context) error {
	ctrl, err := controller(c)
	if err != nil {
		return err
	}

	patch := &models.UserPatch{}
	if v := formValue(c, "display_name"); v != "" {
		patch.DisplayName = &v
	}
	if v := formValue(c, "email"); v != "" {
		patch.Email = &v
	}

	ctx := c.Request().Context()
	if _, err := ctrl.UpdateProfile(ctx, patch); err != nil {
		return Render(c, http.StatusUnprocessableEntity, templates.Profile(templates.ProfileData{Error: ctrl.State().Error}))
	}
	h.profileUpdated(ctrl.State().User)
	success(c, i18n.T(ctx, "profile_saved"))
	return redirect(c, profilePath)
}

// UploadProfilePicture forwards the uploaded file to the API.
func (h *Handlers) UploadProfilePicture(c echo.Context) error {
	ctrl, err := controller(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	fh, err := c.FormFile("profilePicture")
	if err != nil {
		data := templates.ProfileData{Error: i18n.T(ctx, "profile_picture_missing")}
		return Render(c, http.StatusBadRequest, templates.Profile(data))
	}
	file, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest).SetInternal(err)
	}
	defer file.Close()

	upload := models.Upload{
		Body:        file,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
	}
	if _, err := ctrl.UploadProfilePicture(ctx, upload); err != nil {
		return Render(c, http.StatusUnprocessableEntity, templates.Profile(templates.ProfileData{Error: ctrl.State().Error}))
	}
	success(c, i18n.T(ctx, "profile_picture_saved"))
	return redirect(c, profilePath)
}
