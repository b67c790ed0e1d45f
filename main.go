package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/gorilla/mux"

	"urbane-subscription-api/config"
	"urbane-subscription-api/database"
	"urbane-subscription-api/handlers"
	"urbane-subscription-api/middleware"
	"urbane-subscription-api/queue"
	"urbane-subscription-api/services/auth"
	"urbane-subscription-api/services/email"
	"urbane-subscription-api/services/payment"
	"urbane-subscription-api/services/payment/razorpay"
	"urbane-subscription-api/services/payment/stripe"
	"urbane-subscription-api/worker"
)

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		// Log only slow requests and errors.
		elapsed := time.Since(start)
		if elapsed > 500*time.Millisecond || wrapper.status >= 400 {
			log.Printf(
				"%s %s %s %d %v",
				r.Method,
				r.RequestURI,
				r.RemoteAddr,
				wrapper.status,
				elapsed,
			)
		}
	})
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile | log.Lmicroseconds | log.LUTC)

	numCPU := runtime.NumCPU()
	runtime.GOMAXPROCS(numCPU)
	log.Printf("Server starting with %d CPUs available", numCPU)

	cfg := config.Load()
	log.Printf("Configuration loaded successfully")

	var db *database.Connection
	var err error
	for retries := 0; retries < 5; retries++ {
		db, err = database.NewConnection(cfg.Database)
		if err == nil {
			break
		}
		retryDelay := time.Duration(retries+1) * time.Second
		log.Printf("Failed to connect to database (attempt %d/5): %v. Retrying in %v...",
			retries+1, err, retryDelay)
		time.Sleep(retryDelay)
	}

	if err != nil {
		log.Fatalf("Failed to connect to database after retries: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.GetDB().PingContext(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("Successfully connected to database")

	jobQueue, err := queue.NewQueue(cfg.Redis.URL, "subscription_jobs")
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer jobQueue.Close()
	log.Println("Successfully connected to Redis")

	razorpayClient := razorpay.NewClient(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	stripeClient := stripe.NewClient(cfg.Stripe.SecretKey)
	paymentService := payment.NewService(razorpayClient, stripeClient,
		cfg.Stripe.SuccessURL, cfg.Stripe.CancelURL)
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, db)
	emailService := email.NewSMTPService(cfg.SMTP)

	workerConcurrency := cfg.Redis.WorkerConcurrency
	if workerConcurrency < 2 {
		workerConcurrency = 2
	} else if workerConcurrency > 8 {
		workerConcurrency = 8
	}

	subscriptionWorker := worker.NewWorker(jobQueue, db, emailService)
	subscriptionWorker.Start(workerConcurrency)
	defer subscriptionWorker.Stop()
	log.Printf("Started subscription worker with %d threads", workerConcurrency)

	paymentHandler, err := handlers.NewPaymentHandler(db, paymentService, jwtService, jobQueue)
	if err != nil {
		log.Fatalf("Failed to initialize payment handler: %v", err)
	}

	subscriptionHandler := handlers.NewSubscriptionHandler(db, paymentService, jwtService)
	planHandler := handlers.NewPlanHandler(db)
	authHandler := handlers.NewAuthHandler(jwtService)
	draftHandler := handlers.NewDraftHandler(cfg)

	rateLimiter, err := middleware.NewRateLimiter(cfg.Redis.URL)
	if err != nil {
		log.Fatalf("Failed to initialize rate limiter: %v", err)
	}
	defer rateLimiter.Close()

	router := mux.NewRouter()
	router.Use(corsMiddleware)
	router.Use(loggingMiddleware)
	router.Use(rateLimiter.RateLimitMiddleware())

	api := router.PathPrefix("/api").Subrouter()

	// Catalog and checkout endpoints
	api.HandleFunc("/plans", planHandler.GetPlans).Methods("GET", "OPTIONS")
	api.HandleFunc("/payments/create-order", paymentHandler.CreateOrder).Methods("POST", "OPTIONS")
	api.HandleFunc("/payments/verify", paymentHandler.VerifyPayment).Methods("POST", "OPTIONS")
	api.HandleFunc("/payments/status/{session_id}", subscriptionHandler.PaymentStatus).Methods("GET", "OPTIONS")
	api.HandleFunc("/subscriptions/smart", subscriptionHandler.SmartSubscription).Methods("POST", "OPTIONS")

	// Checkout draft resume
	api.HandleFunc("/checkout/draft", draftHandler.SaveDraft).Methods("POST", "PUT", "OPTIONS")
	api.HandleFunc("/checkout/draft", draftHandler.GetDraft).Methods("GET", "OPTIONS")
	api.HandleFunc("/checkout/draft", draftHandler.ClearDraft).Methods("DELETE", "OPTIONS")

	// Auth endpoints
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	protected := api.PathPrefix("/users").Subrouter()
	protected.Use(middleware.AuthMiddleware(jwtService))
	protected.HandleFunc("/me", authHandler.Me).Methods("GET", "OPTIONS")

	startTime := time.Now()

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		health := struct {
			Status    string `json:"status"`
			Time      string `json:"time"`
			Database  string `json:"database"`
			Redis     string `json:"redis"`
			Uptime    string `json:"uptime"`
			GoVersion string `json:"go_version"`
		}{
			Status:    "ok",
			Time:      time.Now().Format(time.RFC3339),
			Database:  "connected",
			Redis:     "connected",
			Uptime:    fmt.Sprintf("%v", time.Since(startTime)),
			GoVersion: runtime.Version(),
		}

		dbCtx, dbCancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer dbCancel()

		if err := db.GetDB().PingContext(dbCtx); err != nil {
			health.Status = "degraded"
			health.Database = "error"
		}

		redisCtx, redisCancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer redisCancel()

		if err := jobQueue.Client().Ping(redisCtx).Err(); err != nil {
			health.Status = "degraded"
			health.Redis = "error"
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(health)
	}).Methods("GET")

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited gracefully")
}
