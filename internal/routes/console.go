package routes

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/abhishekjoshi1998/EduPayout/internal/console"
	"github.com/abhishekjoshi1998/EduPayout/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

const consoleShellHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ .Title }} · EduPayout</title>
  <style>
    :root { color-scheme: light; --accent: #0d9488; --muted: #6b7280; --border: #e5e7eb; }
    * { box-sizing: border-box; }
    body { margin: 0; font-family: system-ui, sans-serif; background: #f9fafb; color: #111827; }
    .layout { display: flex; min-height: 100vh; }
    nav { width: 15rem; background: #fff; border-right: 1px solid var(--border); padding: 1.25rem .75rem; }
    nav h1 { font-size: 1.15rem; margin: 0 .5rem 1.25rem; }
    nav a { display: block; padding: .5rem; border-radius: .375rem; color: var(--muted); text-decoration: none; }
    nav a.active { background: #f0fdfa; color: var(--accent); font-weight: 600; }
    main { flex: 1; padding: 2rem; }
    .login { max-width: 22rem; margin: 12vh auto; background: #fff; padding: 2rem; border-radius: .5rem; border: 1px solid var(--border); }
    .login input { width: 100%; padding: .55rem; margin: .35rem 0 1rem; border: 1px solid var(--border); border-radius: .375rem; }
    .login button, .logout { background: var(--accent); color: #fff; border: 0; padding: .6rem 1rem; border-radius: .375rem; cursor: pointer; }
    .error { color: #b91c1c; min-height: 1.25rem; }
  </style>
</head>
<body>
{{ if eq .Page "login" }}
  <form class="login" id="login-form">
    <h1>EduPayout</h1>
    <label>Email<input type="email" name="email" autocomplete="username" required></label>
    <label>Password<input type="password" name="password" autocomplete="current-password" required></label>
    <p class="error" id="login-error"></p>
    <button type="submit">Sign in</button>
  </form>
  <script>
    document.getElementById('login-form').addEventListener('submit', async function (event) {
      event.preventDefault();
      const form = new FormData(event.target);
      const resp = await fetch('/api/auth/login', {
        method: 'POST',
        headers: { 'Content-Type': 'application/json' },
        body: JSON.stringify({ email: form.get('email'), password: form.get('password') })
      });
      const body = await resp.json();
      if (!resp.ok) {
        document.getElementById('login-error').textContent = body.error || 'Login failed';
        return;
      }
      window.location.assign(body.user.role === 'admin' ? '{{ .AdminHome }}' : '{{ .MentorHome }}');
    });
  </script>
{{ else }}
  <div class="layout">
    <nav>
      <h1>EduPayout</h1>
      {{ range .Nav }}<a href="{{ .Path }}"{{ if .Active }} class="active"{{ end }}>{{ .Name }}</a>
      {{ end }}
      <p><button class="logout" id="logout">Log out</button></p>
    </nav>
    <main id="app" data-page="{{ .Page }}" data-role="{{ .Role }}"{{ with .MentorID }} data-mentor-id="{{ . }}"{{ end }}>
      <h2>{{ .Title }}</h2>
    </main>
  </div>
  <script>
    document.getElementById('logout').addEventListener('click', async function () {
      await fetch('/api/auth/logout', { method: 'POST' });
      window.location.assign('/login');
    });
  </script>
{{ end }}
</body>
</html>
`

type consolePageData struct {
	console.Decision
	AdminHome  string
	MentorHome string
}

// registerConsoleRoutes serves the console shell for every non-API GET and applies the
// route guard before rendering.
func registerConsoleRoutes(app fiber.Router, jwtSecret string) error {
	shell, err := template.New("console-shell").Parse(consoleShellHTML)
	if err != nil {
		return fmt.Errorf("parse console template: %w", err)
	}

	app.Get("/*", func(c *fiber.Ctx) error {
		path := c.Path()
		if strings.HasPrefix(path, "/api/") || path == "/api" {
			return c.Next()
		}

		role := ""
		if claims := middleware.OptionalClaims(c, jwtSecret); claims != nil {
			role = claims.Role
		}

		decision := console.Resolve(path, role)
		if decision.Redirect != "" {
			return c.Redirect(decision.Redirect, fiber.StatusFound)
		}

		var body bytes.Buffer
		if err := shell.Execute(&body, consolePageData{
			Decision:   decision,
			AdminHome:  console.AdminDashboardPath,
			MentorHome: console.MentorDashboardPath,
		}); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render console")
		}

		applyConsoleHeaders(c)
		return c.Status(fiber.StatusOK).Send(body.Bytes())
	})

	return nil
}

func applyConsoleHeaders(c *fiber.Ctx) {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	c.Set(fiber.HeaderCacheControl, "no-store, max-age=0")
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	c.Set(fiber.HeaderXFrameOptions, "DENY")
	c.Set("Referrer-Policy", "no-referrer")
	c.Set("Content-Security-Policy", "default-src 'none'; connect-src 'self'; img-src 'self' data: https:; style-src 'unsafe-inline'; script-src 'unsafe-inline'; base-uri 'none'; form-action 'self'; frame-ancestors 'none'")
	c.Set("Cross-Origin-Opener-Policy", "same-origin")
}
