package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	healthH *HealthHandler,
	questionsH *QuestionnaireHandler,
	sessionH *SessionHandler,
	testH *PersonalityTestHandler,
	scoreH *ScoreHandler,
	sessions SessionResolver,
	trustedProxies []string,
) *gin.Engine {
	if err := registerValidators(); err != nil {
		logger.Warn("custom validators not registered", zap.Error(err))
	}

	r := gin.New()

	// Sin proxies confiables ClientIP usa la IP de la conexion e ignora X-Forwarded-For.
	if len(trustedProxies) == 0 {
		trustedProxies = nil
	}
	if err := r.SetTrustedProxies(trustedProxies); err != nil {
		logger.Warn("invalid trusted proxies, ignoring forwarded headers", zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/healthz", healthH.Health)
	r.GET("/personality-tests/questions", questionsH.ListQuestions)
	r.GET("/personality-tests/questions/:id", questionsH.GetQuestion)

	anon := r.Group("/anonymous-sessions")
	anon.POST("", sessionH.StartSession)
	anon.DELETE("", sessionH.EndSession)
	anon.GET("", AnonymousSessionMiddleware(sessions), sessionH.GetSession)
	anon.PATCH("", AnonymousSessionMiddleware(sessions), sessionH.UpdateIntake)

	anonTests := anon.Group("/personality-tests", AnonymousSessionMiddleware(sessions))
	anonTests.POST("", testH.StartTest)
	anonTests.GET("", testH.GetTest)
	anonTests.PATCH("", testH.AnswerQuestion)
	anonTests.GET("/scores", testH.PreviewScores)

	patients := r.Group("/patients/:id")
	patients.POST("/personality-scores", scoreH.SubmitPatientScores)
	patients.GET("/personality-scores", scoreH.GetPatientScores)
	patients.POST("/personality-scores/from-anonymous-test", AnonymousSessionMiddleware(sessions), testH.FinalizeForPatient)
	patients.GET("/matches", scoreH.MatchTherapists)

	therapists := r.Group("/therapists/:id")
	therapists.POST("/personality-scores", scoreH.SubmitTherapistScores)
	therapists.GET("/personality-scores", scoreH.GetTherapistScores)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
