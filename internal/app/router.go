package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/rafaelalberola/lamiradacreativa/internal/controllers"
	"github.com/rafaelalberola/lamiradacreativa/internal/middleware"
	"github.com/rafaelalberola/lamiradacreativa/internal/routes"
	"github.com/rafaelalberola/lamiradacreativa/internal/utils"
)

// NewHandler builds the full HTTP surface: routes, JSON 405s and CORS.
func NewHandler(a *App) http.Handler {
	healthCtrl := controllers.NewHealthController()
	webhookCtrl := controllers.NewStripeWebhookController(a.WebhookDispatcher)
	checkoutCtrl := controllers.NewCheckoutController(a.CheckoutService)
	userCtrl := controllers.NewUserController(a.IdentityService)

	router := mux.NewRouter()
	router.Use(middleware.RequestLogger, middleware.Recoverer)

	router.HandleFunc(routes.Health, healthCtrl.HealthCheckHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.StripeWebhook, webhookCtrl.WebhookHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.CheckoutSession, checkoutCtrl.CreateSessionHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.CheckoutSession, checkoutCtrl.GetSessionHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.UserCheck, userCtrl.CheckUserHandler).Methods(http.MethodPost)

	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondErrorWithCode(w, http.StatusMethodNotAllowed, utils.ErrCodeMethodNotAllowed, "Method not allowed")
	})
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "Not found")
	})

	c := cors.New(cors.Options{
		AllowedOrigins:       []string{"*"},
		AllowedMethods:       []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:       []string{"Content-Type"},
		OptionsSuccessStatus: http.StatusOK,
	})
	return c.Handler(router)
}
