package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nukesul/boody/internal/domain"
	"github.com/nukesul/boody/internal/webserver"
)

func registerStoryRoutes() {
	webserver.AdminGET("/stories", listStories)
	webserver.AdminPOST("/stories", createStory)
	webserver.AdminPUT("/stories/:id", updateStory)
	webserver.AdminDELETE("/stories/:id", deleteStory)
}

func listStories(c echo.Context) error {
	var out []domain.Story
	if err := client.AdminList(c.Request().Context(), remoteToken(c), "stories", &out); err != nil {
		return failUpstream(c, err)
	}
	return ok(c, out)
}

// A story is just an image, so create requires the upload and update
// replaces it.
func createStory(c echo.Context) error {
	file, err := readUpload(c, "image")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read image", err.Error())
	}
	if file == nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Story image is required", nil)
	}

	var out domain.Story
	if err := client.CreateMultipart(c.Request().Context(), remoteToken(c), "stories", nil, file, &out); err != nil {
		return failUpstream(c, err)
	}
	return ok(c, out)
}

func updateStory(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid story ID", nil)
	}
	file, err := readUpload(c, "image")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read image", err.Error())
	}
	if file == nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Story image is required", nil)
	}

	var out domain.Story
	if err := client.UpdateMultipart(c.Request().Context(), remoteToken(c), "stories", id, nil, file, &out); err != nil {
		return failUpstream(c, err)
	}
	return ok(c, out)
}

func deleteStory(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid story ID", nil)
	}
	if err := client.Delete(c.Request().Context(), remoteToken(c), "stories", id); err != nil {
		return failUpstream(c, err)
	}
	return ok(c, map[string]interface{}{"deleted": id})
}
