// Seeder resets the database and loads a demo dataset for local development.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"studentportal/internal/grade"
	"studentportal/internal/shared"
)

const (
	AdminID    = "USR_admin"
	TeacherID1 = "USR_teacher1"
	TeacherID2 = "USR_teacher2"
	StudentID1 = "USR_student1"
	StudentID2 = "USR_student2"
	StudentID3 = "USR_student3"

	CommonPassword = "password123"

	CS101ID   = "CRS_cs101"
	CS201ID   = "CRS_cs201"
	MATH101ID = "CRS_math101"
)

func main() {
	log.Println("Starting database seeder...")

	if err := shared.LoadEnv(".env"); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := shared.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	client, db, err := shared.ConnectMongoDB(&cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer shared.DisconnectMongoDB(client)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := db.Drop(ctx); err != nil {
		log.Fatalf("Failed to drop database: %v", err)
	}
	log.Println("Database cleared.")

	// Users must exist before grades reference them; everything else is
	// independent and can seed in parallel.
	if err := seedUsers(ctx, db, cfg.Security.BCryptCost); err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return seedCourses(gctx, db) })
	g.Go(func() error { return seedContactMessages(gctx, db) })

	if err := g.Wait(); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	if err := seedGrades(ctx, db); err != nil {
		log.Fatalf("Failed to seed grades: %v", err)
	}

	log.Println("All data seeded successfully.")
}

func seedUsers(ctx context.Context, db *mongo.Database, bcryptCost int) error {
	log.Println("--- Seeding Users ---")
	usersCol := db.Collection("users")

	hash, err := bcrypt.GenerateFromPassword([]byte(CommonPassword), bcryptCost)
	if err != nil {
		return err
	}

	now := time.Now()
	users := []shared.User{
		{ID: AdminID, Username: "admin", Email: "admin@example.com", Role: shared.RoleAdmin,
			Profile: shared.Profile{FullName: "Portal Admin"}},
		{ID: TeacherID1, Username: "jprofessor", Email: "teacher@example.com", Role: shared.RoleTeacher,
			Profile: shared.Profile{FullName: "Dr. Jane Professor", Department: "Computer Science"}},
		{ID: TeacherID2, Username: "aturing", Email: "teacher2@example.com", Role: shared.RoleTeacher,
			Profile: shared.Profile{FullName: "Prof. Alan Turing", Department: "Mathematics"}},
		{ID: StudentID1, Username: "jstudent", Email: "student@example.com", Role: shared.RoleStudent,
			StudentID: "202400001", Profile: shared.Profile{FullName: "John Student", Department: "Computer Science", YearLevel: 1}},
		{ID: StudentID2, Username: "awonder", Email: "student2@example.com", Role: shared.RoleStudent,
			StudentID: "202400002", Profile: shared.Profile{FullName: "Alice Wonderland", Department: "Information Systems", YearLevel: 2}},
		{ID: StudentID3, Username: "bbuilder", Email: "student3@example.com", Role: shared.RoleStudent,
			StudentID: "202400003", Profile: shared.Profile{FullName: "Bob Builder", Department: "Computer Science", YearLevel: 3}},
	}

	docs := make([]interface{}, 0, len(users))
	for _, u := range users {
		u.PasswordHash = string(hash)
		u.IsActive = true
		u.CreatedAt = now
		docs = append(docs, u)
		log.Printf("Seeded %s: %s", u.Role, u.Email)
	}

	_, err = usersCol.InsertMany(ctx, docs)
	return err
}

func seedCourses(ctx context.Context, db *mongo.Database) error {
	log.Println("--- Seeding Courses ---")
	coursesCol := db.Collection("courses")

	now := time.Now()
	courses := []shared.Course{
		{ID: CS101ID, Code: "CS-101", Title: "Introduction to Programming",
			InstructorID: TeacherID1, Department: "Computer Science", Semester: 1, Credits: 3,
			Schedule: "MWF 9:00-10:00", Room: "SCI-101",
			EnrolledStudents: []string{StudentID1, StudentID2}, IsActive: true, CreatedAt: now},
		{ID: CS201ID, Code: "CS-201", Title: "Data Structures & Algorithms",
			InstructorID: TeacherID1, Department: "Computer Science", Semester: 2, Credits: 3,
			Schedule: "TTH 14:00-15:30", Room: "SCI-204",
			EnrolledStudents: []string{StudentID3}, IsActive: true, CreatedAt: now},
		{ID: MATH101ID, Code: "MATH-101", Title: "Calculus I",
			InstructorID: TeacherID2, Department: "Mathematics", Semester: 1, Credits: 4,
			Schedule: "MW 11:00-12:30", Room: "MATH-12",
			EnrolledStudents: []string{StudentID1}, IsActive: true, CreatedAt: now},
	}

	docs := make([]interface{}, 0, len(courses))
	for _, c := range courses {
		docs = append(docs, c)
		log.Printf("Seeded Course: %s (%s)", c.Code, c.ID)
	}

	_, err := coursesCol.InsertMany(ctx, docs)
	return err
}

func seedGrades(ctx context.Context, db *mongo.Database) error {
	log.Println("--- Seeding Grades ---")
	gradesCol := db.Collection("grades")

	seeds := []struct {
		studentID string
		courseID  string
		earned    float64
		possible  float64
	}{
		{StudentID1, CS101ID, 94, 100},
		{StudentID2, CS101ID, 81, 100},
		{StudentID1, MATH101ID, 72, 100},
		{StudentID3, CS201ID, 58, 100},
	}

	now := time.Now()
	docs := make([]interface{}, 0, len(seeds))
	for i, s := range seeds {
		earned, possible := s.earned, s.possible
		rec := shared.GradeRecord{
			ID:            fmt.Sprintf("GRD_seed_%d", i+1),
			StudentID:     s.studentID,
			CourseID:      s.courseID,
			MarksEarned:   &earned,
			MarksPossible: &possible,
			GradedBy:      TeacherID1,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := grade.Recompute(&rec); err != nil {
			return err
		}
		docs = append(docs, rec)
		log.Printf("Seeded Grade: %s for %s (%s)", rec.LetterGrade, s.studentID, s.courseID)
	}

	_, err := gradesCol.InsertMany(ctx, docs)
	return err
}

func seedContactMessages(ctx context.Context, db *mongo.Database) error {
	log.Println("--- Seeding Contact Messages ---")
	contactsCol := db.Collection("contacts")

	now := time.Now()
	msgs := []shared.ContactMessage{
		{ID: "CNT_seed_1", Name: "Prospective Parent", Email: "parent@example.com",
			Message: "How do I apply for the spring intake?", Status: shared.ContactPending,
			CreatedAt: now.Add(-48 * time.Hour)},
		{ID: "CNT_seed_2", Name: "Alumni Office", Email: "alumni@example.com",
			Message: "Requesting transcripts for a graduate.", Status: shared.ContactRead,
			CreatedAt: now.Add(-24 * time.Hour)},
	}

	docs := make([]interface{}, 0, len(msgs))
	for _, m := range msgs {
		docs = append(docs, m)
	}

	_, err := contactsCol.InsertMany(ctx, docs)
	if err == nil {
		log.Printf("Seeded %d contact messages", len(msgs))
	}
	return err
}
