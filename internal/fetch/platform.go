package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known UK job board.
type Platform string

const (
	// PlatformCivilServiceJobs is civilservicejobs.service.gov.uk
	PlatformCivilServiceJobs Platform = "civil_service_jobs"
	// PlatformFindAJob is the DWP Find a Job service
	PlatformFindAJob Platform = "find_a_job"
	// PlatformNHSJobs is jobs.nhs.uk
	PlatformNHSJobs Platform = "nhs_jobs"
	// PlatformUnknown is an unrecognized site
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform identifies the job board from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(NormalizeURL(urlStr))
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Hostname())
	switch {
	case strings.HasSuffix(host, "civilservicejobs.service.gov.uk"):
		return PlatformCivilServiceJobs
	case strings.HasSuffix(host, "findajob.dwp.gov.uk"):
		return PlatformFindAJob
	case host == "jobs.nhs.uk" || strings.HasSuffix(host, ".jobs.nhs.uk") ||
		host == "beta.jobs.nhs.uk":
		return PlatformNHSJobs
	default:
		return PlatformUnknown
	}
}

// PlatformContentSelectors returns content selectors for a platform, followed by the defaults.
func PlatformContentSelectors(platform Platform) []string {
	var specific []string
	switch platform {
	case PlatformCivilServiceJobs:
		specific = []string{
			".vac_display_panel_main_inner",
			".vac_display_panel_main",
			"#main-content",
		}
	case PlatformFindAJob:
		specific = []string{
			".govuk-main-wrapper .govuk-grid-column-two-thirds",
			"#main-content",
		}
	case PlatformNHSJobs:
		specific = []string{
			"#job-overview",
			".nhsuk-main-wrapper",
			"#maincontent",
		}
	}
	return append(specific, DefaultTextSelectors()...)
}

// PlatformNoiseSelectors returns elements to strip for a platform.
func PlatformNoiseSelectors(platform Platform) []string {
	common := []string{
		"form",
		".govuk-cookie-banner",
		".govuk-skip-link",
		".govuk-breadcrumbs",
		".govuk-phase-banner",
		".cookie-banner",
		".share-links",
	}

	switch platform {
	case PlatformCivilServiceJobs:
		return append(common,
			".vac_display_panel_side",
			".csr-apply-button",
		)
	case PlatformFindAJob:
		return append(common,
			".govuk-back-link",
			".related-jobs",
		)
	case PlatformNHSJobs:
		return append(common,
			".nhsuk-cookie-banner",
			".nhsuk-skip-link",
			".nhsuk-back-link",
		)
	default:
		return common
	}
}

// ExtractAdvertText extracts advert text from a page using the selectors for its platform.
func ExtractAdvertText(html string, platform Platform) (string, error) {
	return ExtractMainText(html, PlatformContentSelectors(platform), PlatformNoiseSelectors(platform)...)
}
