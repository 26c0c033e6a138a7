package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

var PostgresDB *sql.DB

// ConnectPostgres connects to PostgreSQL database
func ConnectPostgres(postgresURI string) error {
	var err error

	PostgresDB, err = sql.Open("postgres", postgresURI)
	if err != nil {
		return err
	}

	// Set connection pool settings
	PostgresDB.SetMaxOpenConns(25)
	PostgresDB.SetMaxIdleConns(5)
	PostgresDB.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	if err = PostgresDB.Ping(); err != nil {
		return err
	}

	log.Println("✅ Connected to PostgreSQL")

	// Initialize tables
	if err = InitPostgresTables(); err != nil {
		return err
	}

	return nil
}

// InitPostgresTables creates all necessary tables if they don't exist
func InitPostgresTables() error {
	queries := []string{
		// Users table (parents, therapists, clinic admins, platform admins)
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'parent',
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,

		// Children table (owned by a parent user)
		`CREATE TABLE IF NOT EXISTS children (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			parent_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			birth_year INTEGER,
			avatar_url TEXT,
			star_total INTEGER NOT NULL DEFAULT 0,
			streak_count INTEGER NOT NULL DEFAULT 0,
			last_activity_date DATE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,

		// Activities catalog (published content; created before progress for the FK)
		`CREATE TABLE IF NOT EXISTS activities (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			title VARCHAR(255) NOT NULL,
			description TEXT,
			category VARCHAR(100),
			min_age INTEGER NOT NULL DEFAULT 0,
			max_age INTEGER NOT NULL DEFAULT 18,
			stars_reward INTEGER NOT NULL DEFAULT 1,
			image_url TEXT,
			is_published BOOLEAN NOT NULL DEFAULT FALSE
		)`,

		// Progress records (one per completed activity)
		`CREATE TABLE IF NOT EXISTS progress (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			child_id UUID NOT NULL REFERENCES children(id) ON DELETE CASCADE,
			activity_id UUID NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
			stars INTEGER NOT NULL DEFAULT 0,
			completed_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		// Emotion logs
		`CREATE TABLE IF NOT EXISTS emotion_logs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			child_id UUID NOT NULL REFERENCES children(id) ON DELETE CASCADE,
			emotion VARCHAR(20) NOT NULL,
			note TEXT,
			logged_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		// Advice articles
		`CREATE TABLE IF NOT EXISTS advice (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			title VARCHAR(255) NOT NULL,
			body TEXT NOT NULL,
			category VARCHAR(100),
			image_url TEXT,
			is_published BOOLEAN NOT NULL DEFAULT FALSE
		)`,

		// Generic content items (videos, guides, etc.)
		`CREATE TABLE IF NOT EXISTS content_items (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			title VARCHAR(255) NOT NULL,
			kind VARCHAR(50) NOT NULL,
			body TEXT,
			media_url TEXT,
			is_published BOOLEAN NOT NULL DEFAULT FALSE
		)`,

		// Psychologists (public-facing verified professional profiles)
		`CREATE TABLE IF NOT EXISTS psychologists (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			user_id UUID REFERENCES users(id) ON DELETE SET NULL,
			professional_name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			bio TEXT,
			specialties TEXT,
			years_of_experience INTEGER NOT NULL DEFAULT 0,
			verification_status VARCHAR(20) NOT NULL DEFAULT 'pending',
			verified_at TIMESTAMP,
			verification_expires_at TIMESTAMP,
			last_verification_review_at TIMESTAMP,
			rating_avg NUMERIC(3,2) NOT NULL DEFAULT 0,
			rating_count INTEGER NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,

		// Professional credentials (one license/qualification document each)
		`CREATE TABLE IF NOT EXISTS professional_credentials (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			psychologist_id UUID NOT NULL REFERENCES psychologists(id) ON DELETE CASCADE,
			title VARCHAR(255) NOT NULL,
			issuer VARCHAR(255),
			document_url TEXT NOT NULL,
			verification_status VARCHAR(20) NOT NULL DEFAULT 'pending',
			expires_at TIMESTAMP,
			renewal_requested_at TIMESTAMP,
			reviewed_by UUID REFERENCES users(id) ON DELETE SET NULL
		)`,

		// Clinics
		`CREATE TABLE IF NOT EXISTS clinics (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			name VARCHAR(255) NOT NULL,
			slug VARCHAR(255) NOT NULL UNIQUE,
			country VARCHAR(100) NOT NULL,
			city VARCHAR(100),
			contact_email VARCHAR(255) NOT NULL,
			description TEXT,
			verification_status VARCHAR(20) NOT NULL DEFAULT 'pending',
			verified_at TIMESTAMP,
			reviewed_by UUID REFERENCES users(id) ON DELETE SET NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,

		// Therapist applications (one per user)
		`CREATE TABLE IF NOT EXISTS therapist_applications (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			user_id UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
			status VARCHAR(20) NOT NULL DEFAULT 'draft',
			professional_name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			bio TEXT,
			specialties TEXT,
			years_of_experience INTEGER NOT NULL DEFAULT 0,
			credentials JSONB NOT NULL DEFAULT '[]',
			submitted_at TIMESTAMP,
			reviewed_at TIMESTAMP,
			reviewed_by UUID REFERENCES users(id) ON DELETE SET NULL,
			rejection_reason TEXT,
			psychologist_id UUID REFERENCES psychologists(id) ON DELETE SET NULL
		)`,

		// Clinic affiliations declared on a therapist application
		`CREATE TABLE IF NOT EXISTS therapist_application_clinics (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			application_id UUID NOT NULL REFERENCES therapist_applications(id) ON DELETE CASCADE,
			clinic_id UUID NOT NULL REFERENCES clinics(id) ON DELETE CASCADE,
			role_label VARCHAR(100),
			is_primary BOOLEAN NOT NULL DEFAULT FALSE,
			UNIQUE(application_id, clinic_id)
		)`,

		// Clinic applications (public submissions, document stored on disk)
		`CREATE TABLE IF NOT EXISTS clinic_applications (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			clinic_name VARCHAR(255) NOT NULL,
			country VARCHAR(100) NOT NULL,
			city VARCHAR(100),
			contact_email VARCHAR(255) NOT NULL,
			description TEXT,
			document_filename VARCHAR(255) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			reviewed_at TIMESTAMP,
			reviewed_by UUID REFERENCES users(id) ON DELETE SET NULL,
			rejection_reason TEXT,
			clinic_id UUID REFERENCES clinics(id) ON DELETE SET NULL,
			ip_address VARCHAR(255)
		)`,

		// Clinic invites (single-use tokens for clinic admin onboarding)
		`CREATE TABLE IF NOT EXISTS clinic_invites (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			clinic_id UUID NOT NULL REFERENCES clinics(id) ON DELETE CASCADE,
			email VARCHAR(255) NOT NULL,
			token VARCHAR(255) NOT NULL UNIQUE,
			expires_at TIMESTAMP NOT NULL,
			consumed_at TIMESTAMP
		)`,

		// Clinic admins (user <-> clinic management rights)
		`CREATE TABLE IF NOT EXISTS clinic_admins (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			clinic_id UUID NOT NULL REFERENCES clinics(id) ON DELETE CASCADE,
			UNIQUE(user_id, clinic_id)
		)`,

		// Therapist <-> clinic affiliations (soft-removed, never deleted)
		`CREATE TABLE IF NOT EXISTS therapist_clinics (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			psychologist_id UUID NOT NULL REFERENCES psychologists(id) ON DELETE CASCADE,
			clinic_id UUID NOT NULL REFERENCES clinics(id) ON DELETE CASCADE,
			role_label VARCHAR(100),
			is_primary BOOLEAN NOT NULL DEFAULT FALSE,
			status VARCHAR(20) NOT NULL DEFAULT 'active',
			UNIQUE(psychologist_id, clinic_id)
		)`,

		// Moderation reports against psychologists
		`CREATE TABLE IF NOT EXISTS professional_reports (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			reporter_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			psychologist_id UUID NOT NULL REFERENCES psychologists(id) ON DELETE CASCADE,
			reason VARCHAR(50) NOT NULL DEFAULT 'other',
			details TEXT,
			status VARCHAR(20) NOT NULL DEFAULT 'open',
			action_taken VARCHAR(50) NOT NULL DEFAULT 'none'
		)`,

		// Parent reviews of psychologists
		`CREATE TABLE IF NOT EXISTS reviews (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			reviewer_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			psychologist_id UUID NOT NULL REFERENCES psychologists(id) ON DELETE CASCADE,
			rating INTEGER NOT NULL,
			comment TEXT,
			UNIQUE(reviewer_id, psychologist_id)
		)`,

		// Legal acceptances (terms, privacy policy versions)
		`CREATE TABLE IF NOT EXISTS legal_acceptances (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			document VARCHAR(100) NOT NULL,
			version VARCHAR(50) NOT NULL,
			accepted_at TIMESTAMP NOT NULL DEFAULT NOW(),
			UNIQUE(user_id, document, version)
		)`,

		// Create indexes for better performance
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)`,
		`CREATE INDEX IF NOT EXISTS idx_children_parent_id ON children(parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_progress_child_id ON progress(child_id)`,
		`CREATE INDEX IF NOT EXISTS idx_progress_completed_at ON progress(completed_at)`,
		`CREATE INDEX IF NOT EXISTS idx_emotion_logs_child_id ON emotion_logs(child_id)`,
		`CREATE INDEX IF NOT EXISTS idx_emotion_logs_logged_at ON emotion_logs(logged_at)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_is_published ON activities(is_published)`,
		`CREATE INDEX IF NOT EXISTS idx_advice_is_published ON advice(is_published)`,
		`CREATE INDEX IF NOT EXISTS idx_content_items_is_published ON content_items(is_published)`,
		`CREATE INDEX IF NOT EXISTS idx_psychologists_verification_status ON psychologists(verification_status)`,
		`CREATE INDEX IF NOT EXISTS idx_psychologists_verification_expires_at ON psychologists(verification_expires_at)`,
		`CREATE INDEX IF NOT EXISTS idx_psychologists_user_id ON psychologists(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_professional_credentials_psychologist_id ON professional_credentials(psychologist_id)`,
		`CREATE INDEX IF NOT EXISTS idx_professional_credentials_expires_at ON professional_credentials(expires_at)`,
		`CREATE INDEX IF NOT EXISTS idx_clinics_slug ON clinics(slug)`,
		`CREATE INDEX IF NOT EXISTS idx_clinics_verification_status ON clinics(verification_status)`,
		`CREATE INDEX IF NOT EXISTS idx_therapist_applications_status ON therapist_applications(status)`,
		`CREATE INDEX IF NOT EXISTS idx_therapist_applications_user_id ON therapist_applications(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_clinic_applications_status ON clinic_applications(status)`,
		`CREATE INDEX IF NOT EXISTS idx_clinic_invites_token ON clinic_invites(token)`,
		`CREATE INDEX IF NOT EXISTS idx_clinic_admins_user_id ON clinic_admins(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_clinic_admins_clinic_id ON clinic_admins(clinic_id)`,
		`CREATE INDEX IF NOT EXISTS idx_therapist_clinics_psychologist_id ON therapist_clinics(psychologist_id)`,
		`CREATE INDEX IF NOT EXISTS idx_therapist_clinics_clinic_id ON therapist_clinics(clinic_id)`,
		`CREATE INDEX IF NOT EXISTS idx_professional_reports_status ON professional_reports(status)`,
		`CREATE INDEX IF NOT EXISTS idx_professional_reports_psychologist_id ON professional_reports(psychologist_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_psychologist_id ON reviews(psychologist_id)`,
		`CREATE INDEX IF NOT EXISTS idx_legal_acceptances_user_id ON legal_acceptances(user_id)`,
	}

	for _, query := range queries {
		if _, err := PostgresDB.Exec(query); err != nil {
			return err
		}
	}

	log.Println("✅ PostgreSQL tables initialized")
	return nil
}

// DisconnectPostgres closes the PostgreSQL connection
func DisconnectPostgres() error {
	if PostgresDB != nil {
		return PostgresDB.Close()
	}
	return nil
}
