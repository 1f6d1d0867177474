package v1

import "github.com/sirupsen/logrus"

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	configPath  string
	authorName  string
	authorEmail string
	logger      logrus.FieldLogger
}

// WithConfigFile loads author and logging settings from a YAML file.
// A missing file means defaults.
func WithConfigFile(path string) Option {
	return func(c *clientConfig) {
		c.configPath = path
	}
}

// WithAuthor overrides the identity recorded on commits and tags.
func WithAuthor(name, email string) Option {
	return func(c *clientConfig) {
		c.authorName = name
		c.authorEmail = email
	}
}

// WithLogger sets the logger; otherwise one is built from the config.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}
