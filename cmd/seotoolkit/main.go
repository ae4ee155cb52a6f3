// Command seotoolkit runs a standalone metadata server: admin settings UI,
// XML sitemaps, RSS feed, and a demo page rendering the assembled head block.
// All site branding comes from environment variables.
package main

import (
	"context"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/ecrosas/seotoolkit"
)

func main() {
	cfg := seotoolkit.Config{
		Name:          seotoolkit.EnvOr("SITE_NAME", "Site"),
		URL:           seotoolkit.EnvOr("SITE_URL", "http://localhost:3000"),
		Tagline:       seotoolkit.EnvOr("SITE_TAGLINE", ""),
		Addr:          seotoolkit.EnvOr("ADDR", ":3000"),
		DatabasePath:  seotoolkit.EnvOr("DATABASE_PATH", "data/content.db"),
		AdminPassword: seotoolkit.MustEnv("ADMIN_PASSWORD"),
		SessionSecret: seotoolkit.MustEnv("SESSION_SECRET"),
		CookieSecure:  seotoolkit.EnvOr("COOKIE_SECURE", "") != "",
	}

	opts := []seotoolkit.Option{
		seotoolkit.WithCustomRoutes(registerDemoRoutes),
	}
	if addr := seotoolkit.EnvOr("REDIS_ADDR", ""); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: seotoolkit.EnvOr("REDIS_PASSWORD", ""),
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("redis: %v", err)
		}
		opts = append(opts, seotoolkit.WithCache(seotoolkit.NewRedisCache(client, "")))
	}

	app := seotoolkit.New(cfg, views(), opts...)
	defer app.Close()

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

// registerDemoRoutes adds a page that renders the head block for a post, so
// the pipeline can be exercised end to end from a browser.
func registerDemoRoutes(app *seotoolkit.App) {
	app.Echo.GET("/preview/post/:id/", func(c echo.Context) error {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			return c.NoContent(http.StatusBadRequest)
		}
		post, err := app.Store.GetPost(id)
		if err != nil {
			return c.NoContent(http.StatusNotFound)
		}
		req := &seotoolkit.PageRequest{
			Singular: true,
			PostType: post.Type,
			PostID:   id,
		}

		c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
		c.Response().WriteHeader(http.StatusOK)
		w := c.Response().Writer
		fmt.Fprint(w, "<!DOCTYPE html>\n<html>\n<head>\n")
		if err := app.RenderHead(w, req); err != nil {
			return err
		}
		fmt.Fprintf(w, "</head>\n<body><h1>%s</h1></body>\n</html>\n", html.EscapeString(post.Title))
		return nil
	})
}

func views() seotoolkit.ViewFuncs {
	return seotoolkit.ViewFuncs{
		AdminLogin: func(showError bool, csrfToken string) templ.Component {
			return page(func(w io.Writer) {
				if showError {
					fmt.Fprint(w, "<p>Wrong password.</p>")
				}
				fmt.Fprintf(w, `<form method="post" action="/admin/login/">`+
					`<input type="hidden" name="_csrf" value="%s">`+
					`<input type="password" name="password" placeholder="Password">`+
					`<button>Log in</button></form>`, html.EscapeString(csrfToken))
			})
		},
		AdminSettings: func(settings *seotoolkit.Settings, contexts map[seotoolkit.Context]string, message, csrfToken string) templ.Component {
			return page(func(w io.Writer) {
				if message != "" {
					fmt.Fprintf(w, "<p>%s</p>", html.EscapeString(message))
				}
				fmt.Fprintf(w, "<h1>Settings</h1><p>%d contexts, separator %q, sitemap limit %d</p>",
					len(contexts), settings.TitleSeparator, settings.SitemapLimit)
				fmt.Fprintf(w, `<form method="post" action="/admin/logout/">`+
					`<input type="hidden" name="_csrf" value="%s"><button>Log out</button></form>`,
					html.EscapeString(csrfToken))
			})
		},
		NotFound: func() templ.Component {
			return page(func(w io.Writer) { fmt.Fprint(w, "<h1>Page not found</h1>") })
		},
		ServerError: func() templ.Component {
			return page(func(w io.Writer) { fmt.Fprint(w, "<h1>Something went wrong</h1>") })
		},
	}
}

func page(body func(io.Writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprint(w, "<!DOCTYPE html>\n<html><body>")
		body(w)
		_, err := fmt.Fprint(w, "</body></html>\n")
		return err
	})
}
