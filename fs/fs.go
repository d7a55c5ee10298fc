// Package appfs embeds the files shipped with the binaries.
package appfs

import "embed"

// FS holds the database migrations, the email templates and the static assets.
//
//go:embed migrations/*.sql templates/email/* assets/*
var FS embed.FS

const (
	MigrationsDir     = "migrations"
	EmailTemplatesDir = "templates/email"
	CommonPasswords   = "assets/common-passwords.txt"
)
