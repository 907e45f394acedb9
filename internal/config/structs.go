package config

import (
	"time"

	"github.com/dashstarter/dashstarter/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Avatar    Avatar
	Seed      Seed
}

// Webserver implement webserver settings.
type Webserver struct {
	Domain       string  // domain name for the webserver
	Port         int     // listening port for the webserver
	ShutDownTime int     // wait time for shutdown
	URL          string  // base url for the webserver
	Session      Session // session settings
}

// Avatar holds the object storage settings for avatar images.
// Any S3-compatible endpoint works (AWS, MinIO, etc.).
type Avatar struct {
	Endpoint      string // custom endpoint, empty for AWS
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	UsePathStyle  bool   // path-style addressing (needed for MinIO)
	PublicBaseURL string // base url under which uploaded objects are publicly reachable
}

// Seed holds the bootstrap account created when the identities table is empty.
type Seed struct {
	AdminEmail    string
	AdminPassword string
}
