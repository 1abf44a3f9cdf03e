package router

import "github.com/yalasurf/yalasurf/internal/model"

// Default is the application route table. Declaration order matters:
// the dashboard statistics path is declared twice and the first entry
// (the statistics view) wins.
func Default() *Table {
	return New([]Route{
		// Public
		{Pattern: "/", View: "home"},
		{Pattern: "/contact", View: "contact"},
		{Pattern: "/login", View: "login"},
		{Pattern: "/register", View: "register"},

		// Surfer
		{Pattern: "/surf-clubs", Role: model.RoleSurfer, View: "surf-clubs"},
		{Pattern: "/surf-spots/:id", Role: model.RoleSurfer, View: "surf-spot-details"},
		{Pattern: "/previsions", Role: model.RoleSurfer, View: "previsions"},
		{Pattern: "/forums", Role: model.RoleSurfer, View: "spots-list"},
		{Pattern: "/surf-clubs/:id", Role: model.RoleSurfer, View: "surf-club-details"},
		{Pattern: "/reserve-session/:id", Role: model.RoleSurfer, View: "reserve-session"},
		{Pattern: "/surf-clubs/:id/equipments", Role: model.RoleSurfer, View: "equipment-list"},
		{Pattern: "/equipment/:equipmentId", Role: model.RoleSurfer, View: "equipment-details"},
		{Pattern: "/cart", Role: model.RoleSurfer, View: "cart"},
		{Pattern: "/forum/:surf_spot_id", Role: model.RoleSurfer, View: "forum"},
		{Pattern: "/surf-spots", Role: model.RoleSurfer, View: "surf-spots"},
		{Pattern: "/forecast/:spot_id", Role: model.RoleSurfer, View: "forecast"},
		{Pattern: "/surfer/profile", Role: model.RoleSurfer, View: "surfer-profile"},
		{Pattern: "/surfer/edit", Role: model.RoleSurfer, View: "surfer-edit"},

		// Surf club
		{Pattern: "/surfclub/profile", Role: model.RoleSurfClub, View: "surfclub-profile"},
		{Pattern: "/surfclub/edit", Role: model.RoleSurfClub, View: "surfclub-edit"},
		{Pattern: "/dashboard", Role: model.RoleSurfClub, View: "dashboard"},
		{Pattern: "/dashboard/monitors", Role: model.RoleSurfClub, View: "monitors"},
		{Pattern: "/dashboard/monitor/create", Role: model.RoleSurfClub, View: "monitor-form"},
		{Pattern: "/dashboard/monitor/:id/edit", Role: model.RoleSurfClub, View: "monitor-form"},
		{Pattern: "/dashboard/equipments", Role: model.RoleSurfClub, View: "equipments"},
		{Pattern: "/dashboard/equipment/create", Role: model.RoleSurfClub, View: "equipment-form"},
		{Pattern: "/dashboard/equipment/:id/edit", Role: model.RoleSurfClub, View: "equipment-form"},
		{Pattern: "/dashboard/surf-session", Role: model.RoleSurfClub, View: "surf-sessions"},
		{Pattern: "/dashboard/surf-session/create", Role: model.RoleSurfClub, View: "surf-session-form"},
		{Pattern: "/dashboard/surf-session/:id/edit", Role: model.RoleSurfClub, View: "surf-session-form"},
		{Pattern: "/dashboard/lesson-schedule", Role: model.RoleSurfClub, View: "lesson-schedules"},
		{Pattern: "/dashboard/lesson-schedule/create", Role: model.RoleSurfClub, View: "lesson-schedule-form"},
		{Pattern: "/dashboard/lesson-schedule/:id/edit", Role: model.RoleSurfClub, View: "lesson-schedule-form"},
		{Pattern: "/dashboard/surf-lesson", Role: model.RoleSurfClub, View: "surf-lessons"},
		{Pattern: "/dashboard/surf-lesson/:id", Role: model.RoleSurfClub, View: "surf-lesson-detail"},
		{Pattern: "/dashboard/orders", Role: model.RoleSurfClub, View: "orders"},
		{Pattern: "/dashboard/statistics", Role: model.RoleSurfClub, View: "statistics"},
		{Pattern: "/dashboard/orders/:id", Role: model.RoleSurfClub, View: "order-detail"},
		// Duplicate declaration carried from the shipped route table;
		// first match wins, so this entry is unreachable by design.
		{Pattern: "/dashboard/statistics", Role: model.RoleSurfClub, View: "orders"},
	})
}
