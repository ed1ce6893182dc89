package openapi

import "os"

// Config carries the document metadata that deployments may rebrand.
type Config struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
}

// Env names the environment variables that override Config fields.
type Env struct {
	Title       string
	Description string
}

// Finalize fills defaults, then applies environment overrides.
func (c *Config) Finalize(env *Env) error {
	if c.Title == "" {
		c.Title = "CamelRate API"
	}
	if c.Description == "" {
		c.Description = "Rates camel beauty from images using vision language models."
	}
	if env != nil {
		envString(env.Title, &c.Title)
		envString(env.Description, &c.Description)
	}
	return nil
}

// Merge applies non-empty values from the overlay configuration.
func (c *Config) Merge(overlay *Config) {
	if overlay.Title != "" {
		c.Title = overlay.Title
	}
	if overlay.Description != "" {
		c.Description = overlay.Description
	}
}

func envString(name string, dst *string) {
	if name == "" {
		return
	}
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}
