package certificate

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	fragmentPolicyOnce sync.Once
	fragmentPolicy     *bluemonday.Policy
)

// sanitizeFragment strips everything but the certificate's own markup before
// it is inlined into a printable document.
func sanitizeFragment(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(fragmentSanitizer().Sanitize(trimmed))
}

func fragmentSanitizer() *bluemonday.Policy {
	fragmentPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		elements := []string{"div", "span", "p", "h1", "h2", "strong", "em", "br"}
		policy.AllowElements(elements...)
		policy.AllowAttrs("class", "id").OnElements(elements...)
		fragmentPolicy = policy
	})
	return fragmentPolicy
}
