package ice

import (
	"fmt"
	"strings"

	"github.com/pion/webrtc/v4"

	"signaling-service/internal/config"
)

// Catalog assembles the ICE server list clients feed into their
// RTCPeerConnection. STUN entries are static; TURN entries carry either the
// configured static credentials or per-session REST credentials when a
// shared secret is set.
type Catalog struct {
	stunURLs []string
	turnURLs []string

	staticUsername   string
	staticCredential string

	rest *Generator
}

func NewCatalog(cfg config.ICEConfig) (*Catalog, error) {
	for _, u := range cfg.STUNURLs {
		if !validSchemes(u, "stun:", "stuns:") {
			return nil, fmt.Errorf("ice: invalid stun url %q", u)
		}
	}
	for _, u := range cfg.TURNURLs {
		if !validSchemes(u, "turn:", "turns:") {
			return nil, fmt.Errorf("ice: invalid turn url %q", u)
		}
	}

	c := &Catalog{
		stunURLs:         cfg.STUNURLs,
		turnURLs:         cfg.TURNURLs,
		staticUsername:   cfg.TURNUsername,
		staticCredential: cfg.TURNCredential,
	}

	if len(cfg.TURNURLs) > 0 && cfg.TURNRESTSecret != "" {
		gen, err := NewGenerator(cfg.TURNRESTSecret, cfg.TURNRESTPrefix, cfg.TURNRESTTTL)
		if err != nil {
			return nil, err
		}
		c.rest = gen
	}
	return c, nil
}

// ServersFor returns the ICE servers for one session. When TURN REST is
// configured the TURN entry gets credentials bound to the session ID.
func (c *Catalog) ServersFor(sessionID string) ([]webrtc.ICEServer, error) {
	servers := make([]webrtc.ICEServer, 0, 2)

	if len(c.stunURLs) > 0 {
		servers = append(servers, webrtc.ICEServer{URLs: c.stunURLs})
	}

	if len(c.turnURLs) > 0 {
		turn := webrtc.ICEServer{
			URLs:       c.turnURLs,
			Username:   c.staticUsername,
			Credential: c.staticCredential,
		}
		if c.rest != nil {
			creds, err := c.rest.Credentials(sessionID)
			if err != nil {
				return nil, err
			}
			turn.Username = creds.Username
			turn.Credential = creds.Credential
		}
		servers = append(servers, turn)
	}

	return servers, nil
}

func validSchemes(url string, schemes ...string) bool {
	for _, s := range schemes {
		if strings.HasPrefix(url, s) {
			return true
		}
	}
	return false
}
