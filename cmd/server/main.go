package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studentportal/internal/auth"
	"studentportal/internal/contact"
	"studentportal/internal/course"
	"studentportal/internal/email"
	"studentportal/internal/grade"
	"studentportal/internal/server"
	"studentportal/internal/server/handlers"
	"studentportal/internal/shared"
	"studentportal/internal/upload"
	"studentportal/internal/user"
)

func main() {
	log.Println("INFO: Starting Student Portal API...")

	if err := shared.LoadEnv(".env"); err != nil {
		log.Println("INFO: Continuing with system environment variables")
	}

	cfg, err := shared.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 1. Connect to MongoDB
	client, db, err := shared.ConnectMongoDB(&cfg.MongoDB)
	if err != nil {
		log.Fatalf("FATAL: Failed to connect to MongoDB: %v", err)
	}
	defer shared.DisconnectMongoDB(client)

	// 2. Outbound email: SendGrid in production, console otherwise
	var mailer email.Service
	if cfg.Mail.SendgridKey != "" {
		mailer = email.NewSendgridService(cfg.Mail.SendgridKey, cfg.AppName, cfg.Mail.FromEmail)
		log.Println("INFO: Using SendGrid email backend")
	} else {
		mailer = email.NewConsoleService(cfg.AppName, cfg.Mail.FromEmail)
		log.Println("INFO: No SendGrid key configured, logging email to console")
	}

	// 3. Build services
	authSvc := auth.NewService(db, cfg)
	courseSvc := course.NewService(course.NewMongoStore(db))
	contactSvc := contact.NewService(contact.NewMongoStore(db), mailer, cfg.Mail.AdminEmail)
	gradeSvc := grade.NewService(grade.NewMongoStore(db))
	userSvc := user.NewService(db)
	saver := upload.NewSaver(cfg.Upload)

	// 4. Setup routes and middleware
	router := server.SetupRoutes(cfg, server.Services{
		Auth:    authSvc,
		Course:  &handlers.CourseHandler{Courses: courseSvc},
		Contact: &handlers.ContactHandler{Contact: contactSvc},
		Grade:   &handlers.GradeHandler{Grades: gradeSvc},
		User:    &handlers.UserHandler{Users: userSvc},
		Upload:  &handlers.UploadHandler{Saver: saver, Users: userSvc, Courses: courseSvc},
	})

	// 5. Configure server
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 6. Start server in a goroutine
	go func() {
		log.Printf("INFO: API listening on port %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("FATAL: HTTP server error: %v", err)
		}
	}()

	// 7. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("INFO: Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARN: Shutdown error: %v", err)
	}

	log.Println("INFO: Server stopped.")
}
