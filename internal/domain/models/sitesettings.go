// internal/domain/models/sitesettings.go
package models

// DefaultSiteName is shown in the page header and title bar.
const DefaultSiteName = "Yatube"
