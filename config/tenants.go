package config

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed tenants.yaml
var defaultTenantsYAML []byte

type Theme struct {
	Brand  string `yaml:"brand" json:"--brand"`
	Accent string `yaml:"accent" json:"--accent"`
}

// TenantMeta is the static branding for one tenant app.
type TenantMeta struct {
	Slug        string `yaml:"slug" json:"slug"`
	Name        string `yaml:"name" json:"name"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Theme       Theme  `yaml:"theme" json:"theme"`
}

// TenantCatalog is the fixed allow-list of tenants served by this deployment.
type TenantCatalog struct {
	Default string       `yaml:"default"`
	Tenants []TenantMeta `yaml:"tenants"`

	bySlug map[string]TenantMeta
}

// LoadTenantCatalog parses the catalog compiled into the binary.
func LoadTenantCatalog() (*TenantCatalog, error) {
	return ParseTenantCatalog(defaultTenantsYAML)
}

func ParseTenantCatalog(data []byte) (*TenantCatalog, error) {
	var catalog TenantCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse tenant catalog: %w", err)
	}

	catalog.bySlug = make(map[string]TenantMeta, len(catalog.Tenants))
	for _, t := range catalog.Tenants {
		slug := strings.ToLower(strings.TrimSpace(t.Slug))
		if slug == "" || slug != t.Slug {
			return nil, fmt.Errorf("tenant slug %q must be non-empty lowercase", t.Slug)
		}
		if strings.ContainsAny(slug, ".: ") {
			return nil, fmt.Errorf("tenant slug %q is not a valid subdomain label", slug)
		}
		if _, dup := catalog.bySlug[slug]; dup {
			return nil, fmt.Errorf("duplicate tenant slug %q", slug)
		}
		if t.Name == "" {
			return nil, fmt.Errorf("tenant %q has no name", slug)
		}
		catalog.bySlug[slug] = t
	}

	if _, ok := catalog.bySlug[catalog.Default]; !ok {
		return nil, fmt.Errorf("default tenant %q is not in the catalog", catalog.Default)
	}

	return &catalog, nil
}

// Allowed returns the set of tenant slugs for host resolution.
func (c *TenantCatalog) Allowed() map[string]struct{} {
	allowed := make(map[string]struct{}, len(c.bySlug))
	for slug := range c.bySlug {
		allowed[slug] = struct{}{}
	}
	return allowed
}

func (c *TenantCatalog) Slugs() []string {
	slugs := make([]string, 0, len(c.Tenants))
	for _, t := range c.Tenants {
		slugs = append(slugs, t.Slug)
	}
	return slugs
}

// Meta returns the branding for slug. Unknown slugs get the default tenant, and
// tenants without their own title, description or theme inherit the default's.
func (c *TenantCatalog) Meta(slug string) TenantMeta {
	def := c.bySlug[c.Default]
	t, ok := c.bySlug[slug]
	if !ok {
		return def
	}
	if t.Title == "" {
		t.Title = def.Title
	}
	if t.Description == "" {
		t.Description = def.Description
	}
	if t.Theme.Brand == "" || t.Theme.Accent == "" {
		t.Theme = def.Theme
	}
	return t
}
