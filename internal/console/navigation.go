// Package console decides what the server-rendered console shows for a path and a
// signed-in role. It does no I/O.
package console

import (
	"strings"

	"github.com/abhishekjoshi1998/EduPayout/internal/models"
)

const (
	LoginPath           = "/login"
	AdminDashboardPath  = "/admin/dashboard"
	MentorDashboardPath = "/mentor/dashboard"
)

type NavItem struct {
	Name   string
	Path   string
	Active bool
}

// Decision is either a redirect or a page to render for Role.
type Decision struct {
	Redirect string
	Page     string
	Title    string
	Role     string
	MentorID string
	Nav      []NavItem
}

type page struct {
	name  string
	title string
}

var adminPages = map[string]page{
	"dashboard": {"dashboard", "Dashboard"},
	"sessions":  {"sessions", "Sessions"},
	"payouts":   {"payouts", "Payouts"},
	"receipts":  {"receipts", "Receipts"},
	"mentors":   {"mentors", "Mentors"},
	"settings":  {"settings", "Settings"},
}

var mentorPages = map[string]page{
	"dashboard": {"dashboard", "Dashboard"},
	"sessions":  {"sessions", "Sessions"},
	"payouts":   {"payouts", "Payouts"},
	"profile":   {"profile", "Profile"},
	"chat":      {"chat", "Chat"},
}

var adminNav = []NavItem{
	{Name: "Dashboard", Path: "/admin/dashboard"},
	{Name: "Sessions", Path: "/admin/sessions"},
	{Name: "Payouts", Path: "/admin/payouts"},
	{Name: "Receipts", Path: "/admin/receipts"},
	{Name: "Mentors", Path: "/admin/mentors"},
	{Name: "Settings", Path: "/admin/settings"},
}

var mentorNav = []NavItem{
	{Name: "Dashboard", Path: "/mentor/dashboard"},
	{Name: "Sessions", Path: "/mentor/sessions"},
	{Name: "Payouts", Path: "/mentor/payouts"},
	{Name: "Profile", Path: "/mentor/profile"},
	{Name: "Chat", Path: "/mentor/chat"},
}

// DashboardFor returns the landing page of role, or the login page for anything else.
func DashboardFor(role string) string {
	switch role {
	case models.RoleAdmin:
		return AdminDashboardPath
	case models.RoleMentor:
		return MentorDashboardPath
	default:
		return LoginPath
	}
}

// Resolve applies the console route guard. role is empty for anonymous visitors.
func Resolve(path string, role string) Decision {
	path = normalizePath(path)
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")

	switch {
	case path == "/":
		return Decision{Redirect: LoginPath}
	case path == LoginPath:
		if role == models.RoleAdmin || role == models.RoleMentor {
			return Decision{Redirect: DashboardFor(role)}
		}
		return Decision{Page: "login", Title: "Sign in"}
	case segments[0] == models.RoleAdmin:
		return resolveSection(models.RoleAdmin, segments[1:], role)
	case segments[0] == models.RoleMentor:
		return resolveSection(models.RoleMentor, segments[1:], role)
	default:
		return Decision{Redirect: "/"}
	}
}

func resolveSection(section string, rest []string, role string) Decision {
	target, mentorID, ok := matchPage(section, rest)
	if !ok {
		return Decision{Redirect: "/"}
	}
	if role == "" {
		return Decision{Redirect: LoginPath}
	}
	if role != section {
		return Decision{Redirect: DashboardFor(role)}
	}
	if target == "" {
		return Decision{Redirect: DashboardFor(role)}
	}

	pages := adminPages
	nav := adminNav
	if section == models.RoleMentor {
		pages = mentorPages
		nav = mentorNav
	}

	p, found := pages[target]
	if !found {
		p = page{name: "chat", title: "Chat"}
	}
	return Decision{
		Page:     p.name,
		Title:    p.title,
		Role:     role,
		MentorID: mentorID,
		Nav:      markActive(nav, "/"+section+"/"+target),
	}
}

// matchPage returns an empty target for the bare section index.
func matchPage(section string, rest []string) (string, string, bool) {
	if len(rest) == 0 {
		return "", "", true
	}

	if section == models.RoleAdmin {
		if rest[0] == "chat" {
			if len(rest) == 2 && rest[1] != "" {
				return "chat", rest[1], true
			}
			return "", "", false
		}
		_, ok := adminPages[rest[0]]
		return rest[0], "", ok && len(rest) == 1
	}

	_, ok := mentorPages[rest[0]]
	return rest[0], "", ok && len(rest) == 1
}

func markActive(items []NavItem, path string) []NavItem {
	out := make([]NavItem, len(items))
	for i, item := range items {
		item.Active = item.Path == path
		out[i] = item
	}
	return out
}

func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return "/"
		}
	}
	return path
}
