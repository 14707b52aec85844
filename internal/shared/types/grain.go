package types

import "time"

// Grain is a grain record as seen by its owner
type Grain struct {
	ID        string    `json:"id" yaml:"id"`
	UserID    string    `json:"user_id" yaml:"user_id"`
	PackageID string    `json:"package_id" yaml:"package_id"`
	AppID     string    `json:"app_id" yaml:"app_id"`
	Title     string    `json:"title" yaml:"title"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Icon references a static asset
type Icon struct {
	AssetID string `json:"asset_id" yaml:"asset_id"`
}

// Icons holds the per-usage icons declared by a package
type Icons struct {
	Grain   *Icon `json:"grain,omitempty" yaml:"grain,omitempty"`
	AppGrid *Icon `json:"app_grid,omitempty" yaml:"app_grid,omitempty"`
}

// Manifest is the subset of a package manifest the shell displays
type Manifest struct {
	AppTitle string `json:"app_title" yaml:"app_title"`
	Icons    Icons  `json:"icons" yaml:"icons"`
}

// Package is an installed app package
type Package struct {
	ID       string    `json:"id" yaml:"id"`
	AppID    string    `json:"app_id" yaml:"app_id"`
	Manifest *Manifest `json:"manifest,omitempty" yaml:"manifest,omitempty"`
}

// GrainMetadata is display metadata copied from a grain and its package
// so it can be shown without access to either
type GrainMetadata struct {
	AppTitle string `json:"app_title,omitempty" yaml:"app_title,omitempty"`
	AppID    string `json:"app_id,omitempty" yaml:"app_id,omitempty"`
	Icon     *Icon  `json:"icon,omitempty" yaml:"icon,omitempty"`
}
