package storeapi

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/nukesul/boody/internal/stories"
	"github.com/nukesul/boody/internal/webserver"
)

// One story viewer per session, created lazily on open. The player
// owns the auto-advance timer; it dies with the viewer, not with the
// request.
var (
	playersMu sync.Mutex
	players   = map[string]*stories.Player{}
)

func registerStoryViewerRoutes() {
	webserver.ApiPOST("/stories/open", openStoryViewer)
	webserver.ApiPOST("/stories/next", nextStory)
	webserver.ApiPOST("/stories/prev", prevStory)
	webserver.ApiPOST("/stories/close", closeStoryViewer)
	webserver.ApiGET("/stories/current", currentStory)
}

func sessionPlayer(sessionID string) *stories.Player {
	playersMu.Lock()
	defer playersMu.Unlock()
	// closed viewers are done for good, drop them so the map only
	// holds open ones
	for sid, p := range players {
		if sid == sessionID {
			continue
		}
		if _, open := p.Current(); !open {
			delete(players, sid)
		}
	}
	p, ok := players[sessionID]
	if !ok {
		p = stories.NewPlayer(stories.DefaultAdvanceInterval, nil)
		players[sessionID] = p
	}
	return p
}

type storyViewerView struct {
	Open  bool        `json:"open"`
	Index int         `json:"index"`
	Total int         `json:"total"`
	Story interface{} `json:"story"`
}

func renderViewer(c echo.Context, sessionID string) error {
	p := sessionPlayer(sessionID)
	index, open := p.Current()

	view := storyViewerView{Open: open, Index: index}
	if cat, err := cstore.Snapshot(); err == nil {
		view.Total = len(cat.Stories)
		if open && index < len(cat.Stories) {
			view.Story = cat.Stories[index]
		}
	}
	return ok(c, view)
}

func openStoryViewer(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	cat, err := cstore.Snapshot()
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "CATALOG_NOT_LOADED", "Catalog is not loaded yet", nil)
	}
	sessionPlayer(sid).Open(cat.Stories)
	return renderViewer(c, sid)
}

func nextStory(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	sessionPlayer(sid).Next()
	return renderViewer(c, sid)
}

func prevStory(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	sessionPlayer(sid).Prev()
	return renderViewer(c, sid)
}

func closeStoryViewer(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	sessionPlayer(sid).Close()
	return renderViewer(c, sid)
}

func currentStory(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	return renderViewer(c, sid)
}
