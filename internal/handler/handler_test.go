package handler

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/anxun-security/guard-roster/backend/internal/config"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.Generation.Timezone = "UTC"

	h, err := NewHandler(cfg, nil, nil, nil)
	require.NoError(t, err)
	h.RegisterRoutes()

	return h
}

// 路由注册是纯粹的接线，掉了一条路由编译器不会报错，这里整体核对一遍
func TestRegisterRoutes(t *testing.T) {
	h := newTestHandler(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/auth/login"},
		{http.MethodPost, "/auth/logout"},
		{http.MethodPost, "/auth/reset-password/require"},
		{http.MethodPost, "/auth/reset-password/confirm"},
		{http.MethodGet, "/my-info"},
		{http.MethodPatch, "/my-info/password"},
		{http.MethodPost, "/my-info/update-email/require"},
		{http.MethodPost, "/my-info/update-email/confirm"},
		{http.MethodPost, "/users"},
		{http.MethodGet, "/users/1"},
		{http.MethodGet, "/locations"},
		{http.MethodPatch, "/locations/1"},
		{http.MethodGet, "/shift-templates"},
		{http.MethodDelete, "/shift-templates/1"},
		{http.MethodGet, "/holidays"},
		{http.MethodGet, "/location-closures"},
		{http.MethodGet, "/shift-issues"},
		{http.MethodGet, "/shift-instances"},
		{http.MethodPost, "/shift-instances/generate"},
	}

	for _, route := range routes {
		rctx := chi.NewRouteContext()
		require.True(t, h.Mux.Match(rctx, route.method, route.path), "%s %s 未注册", route.method, route.path)
	}
}
