package app

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"storedir/internal/models"

	"github.com/gofiber/template/html/v2"
)

//go:embed views
var viewsFS embed.FS

//go:embed static
var staticFS embed.FS

// NewViews loads the embedded templates with the helpers they use.
func NewViews() (*html.Engine, error) {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		return nil, fmt.Errorf("failed to open views: %w", err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFuncMap(TemplateFuncs())
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("failed to load views: %w", err)
	}
	return engine, nil
}

// TemplateFuncs are the helpers available in every view.
func TemplateFuncs() map[string]interface{} {
	return map[string]interface{}{
		"hasTag":     hasTag,
		"hearted":    hearted,
		"stars":      stars,
		"join":       strings.Join,
		"formatDate": formatDate,
		"truncate":   truncateWords,
		"dict":       dict,
		"ratings":    func() []int { return []int{5, 4, 3, 2, 1} },
		"inc":        func(i int) int { return i + 1 },
	}
}

func hasTag(store *models.Store, tag string) bool {
	return store != nil && store.HasTag(tag)
}

func hearted(user *models.User, storeID string) bool {
	return user != nil && user.HasHeart(storeID)
}

func stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

func formatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

func truncateWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return s
	}
	return strings.Join(words[:n], " ") + "…"
}

func dict(pairs ...interface{}) (map[string]interface{}, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict needs an even number of arguments, got %d", len(pairs))
	}
	m := make(map[string]interface{}, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}
