package main

import "net/http"

func (a *app) routes() http.Handler {
	mux := http.NewServeMux()

	page := func(h http.HandlerFunc) http.Handler { return a.authMW.OptionalAuth(h) }
	private := func(h http.HandlerFunc) http.Handler { return a.authMW.RequireAuth(h) }
	api := func(h http.HandlerFunc) http.Handler { return a.limiter.Limit(a.authMW.RequireAuthAPI(h)) }
	public := func(h http.HandlerFunc) http.Handler { return a.limiter.Limit(a.authMW.OptionalAuth(h)) }

	// Auth routes
	mux.HandleFunc("GET /login", a.auth.Login)
	mux.HandleFunc("GET /auth/google/login", a.auth.GoogleLogin)
	mux.HandleFunc("GET /auth/google/callback", a.auth.GoogleCallback)
	mux.HandleFunc("GET /auth/github/login", a.auth.GitHubLogin)
	mux.HandleFunc("GET /auth/github/callback", a.auth.GitHubCallback)
	mux.HandleFunc("/auth/logout", a.auth.Logout)

	// Catalog
	mux.HandleFunc("/", a.browse.Root)
	mux.Handle("GET /browse", page(a.browse.Page))
	mux.Handle("GET /api/browse", public(a.browse.API))
	mux.Handle("/proxy", a.proxy)
	mux.Handle("GET /titles/{kind}/{id}", page(a.titles.Page))
	mux.Handle("GET /api/titles/{kind}/{id}", public(a.titles.API))

	// Comments
	mux.Handle("GET /api/titles/{kind}/{id}/comments", public(a.titles.Comments))
	mux.Handle("POST /api/titles/{kind}/{id}/comments", api(a.titles.AddComment))
	mux.Handle("PATCH /api/comments/{id}", api(a.titles.UpdateComment))
	mux.Handle("DELETE /api/comments/{id}", api(a.titles.DeleteComment))

	// Library
	mux.Handle("GET /library/{list}", private(a.library.Page))
	mux.Handle("GET /api/library/{list}", api(a.library.List))
	mux.Handle("POST /api/library/{list}", api(a.library.Add))
	mux.Handle("DELETE /api/library/{list}/{kind}/{id}", api(a.library.Remove))

	// Social
	mux.Handle("POST /api/users/{id}/follow", api(a.social.Follow))
	mux.Handle("DELETE /api/users/{id}/follow", api(a.social.Unfollow))
	mux.Handle("GET /api/users/{id}/followers", api(a.social.Followers))
	mux.Handle("GET /api/users/{id}/following", api(a.social.Following))
	mux.Handle("GET /api/users/{id}", api(a.social.Profile))
	mux.Handle("GET /feed", private(a.social.FeedPage))
	mux.Handle("GET /api/feed", api(a.social.FeedAPI))

	mux.HandleFunc("GET /health", a.health)

	return mux
}
