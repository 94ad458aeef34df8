package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known job board.
type Platform string

// Known platforms
const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformBoss       Platform = "boss"
	PlatformLiepin     Platform = "liepin"
	PlatformUnknown    Platform = "unknown"
)

type platformProfile struct {
	hosts   []string
	content []string
	noise   []string
}

var platforms = map[Platform]platformProfile{
	PlatformGreenhouse: {
		hosts:   []string{"greenhouse.io"},
		content: []string{".job__description.body", ".job__description", ".job-description__content", "#content", ".job-post-container"},
		noise:   []string{".application--wrapper", ".voluntary-self-id", "#usa_self_id_section", ".post-apply"},
	},
	PlatformLever: {
		hosts:   []string{"lever.co"},
		content: []string{".posting-page", ".section-wrapper.page-full-width", ".posting-description", ".content"},
		noise:   []string{".apply-section", ".lever-application-form", ".posting-apply"},
	},
	PlatformWorkday: {
		hosts:   []string{"workday.com", "myworkdayjobs.com"},
		content: []string{"[data-automation-id='jobDescription']", ".job-description"},
		noise:   []string{"[data-automation-id='applyButton']", ".application-section"},
	},
	PlatformBoss: {
		hosts:   []string{"zhipin.com"},
		content: []string{".job-sec-text", ".job-detail-section", ".job-detail"},
		noise:   []string{".job-boss-info", ".sider-company", ".job-op"},
	},
	PlatformLiepin: {
		hosts:   []string{"liepin.com"},
		content: []string{".job-intro-container", ".job-description", ".job-detail"},
		noise:   []string{".company-other", ".apply-btn-container"},
	},
}

// commonNoise is removed from every job page.
var commonNoise = []string{
	"form",
	"#application-form",
	".application-form",
	".apply-button-container",
	".eeo-statement",
	".legal-disclosure",
	".social-share",
	".share-buttons",
	".cookie-consent",
	".gdpr-notice",
}

// DetectPlatform identifies the job board of a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}
	host := strings.ToLower(parsed.Hostname())

	for platform, profile := range platforms {
		for _, h := range profile.hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return platform
			}
		}
	}
	return PlatformUnknown
}

// PlatformContentSelectors returns the content selectors of a platform,
// followed by the generic job posting selectors.
func PlatformContentSelectors(platform Platform) []string {
	profile, ok := platforms[platform]
	if !ok {
		return JobPostingSelectors()
	}
	return append(append([]string{}, profile.content...), JobPostingSelectors()...)
}

// PlatformNoiseSelectors returns the elements to strip from a platform's pages.
func PlatformNoiseSelectors(platform Platform) []string {
	noise := append([]string{}, commonNoise...)
	if profile, ok := platforms[platform]; ok {
		noise = append(noise, profile.noise...)
	}
	return noise
}
