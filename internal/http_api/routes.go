package http_api

// routes sets up the routes for the HTTP server.
func (s *HTTPServer) routes() {
	s.router.GET("/healthz", s.healthz)

	// Public webhook receiver for the payment processor.
	s.router.POST("/webhooks/:username", s.handleWebhook)

	api := s.router.Group("/api/v1")
	api.GET("/profiles/:username", s.getPublicProfile)
	api.POST("/tips", s.createTip)

	me := api.Group("/me", s.requireAuth)
	me.GET("", s.getProfile)
	me.PUT("/username", s.updateUsername)
	me.PUT("/commerce-key", s.updateCommerceKey)
	me.PUT("/notifications", s.updateNotifications)
	me.POST("/webhook-secret", s.rotateWebhookSecret)
	me.GET("/donations", s.listDonations)
}
