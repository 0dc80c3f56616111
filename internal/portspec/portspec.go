// Package portspec parses the free-text port specification an operator
// enters per source group, e.g. "80, 443-8443, udp:53".
package portspec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wardenhq/warden/internal/domain"
)

const DefaultProtocol = "tcp"

var validProtocols = map[string]bool{
	"tcp":  true,
	"udp":  true,
	"icmp": true,
}

// Parse turns spec text into port ranges. Blank text means "no access"
// and yields an empty set. Entries are comma-delimited; each is a port, a
// from-to range, or either of those qualified by a protocol prefix
// ("udp:53"). The protocol defaults to tcp. On the first bad entry the
// whole spec is rejected with no partial results.
func Parse(text string) ([]domain.PortRange, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var ranges []domain.PortRange
	for _, entry := range strings.Split(text, ",") {
		r, err := parseEntry(strings.TrimSpace(entry))
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

func parseEntry(entry string) (domain.PortRange, error) {
	protocol := DefaultProtocol
	portPart := entry
	if idx := strings.Index(entry, ":"); idx >= 0 {
		protocol = strings.ToLower(entry[:idx])
		portPart = entry[idx+1:]
		if !validProtocols[protocol] {
			return domain.PortRange{}, &domain.Error{
				Kind:   domain.MalformedPortSpec,
				Detail: fmt.Sprintf("port spec entry %q has unknown protocol %q", entry, entry[:idx]),
			}
		}
	}

	fromText := portPart
	toText := portPart
	if parts := strings.SplitN(portPart, "-", 2); len(parts) == 2 {
		fromText, toText = parts[0], parts[1]
	}

	fromPort, err := strconv.Atoi(fromText)
	if err != nil {
		return domain.PortRange{}, malformed(entry)
	}
	toPort, err := strconv.Atoi(toText)
	if err != nil {
		return domain.PortRange{}, malformed(entry)
	}

	for _, p := range []int{fromPort, toPort} {
		if p < 0 || p > 65535 {
			return domain.PortRange{}, &domain.Error{
				Kind:   domain.PortOutOfRange,
				Detail: fmt.Sprintf("port %d in entry %q is out of range (0-65535)", p, entry),
			}
		}
	}
	if fromPort > toPort {
		return domain.PortRange{}, &domain.Error{
			Kind:   domain.InvalidPortRange,
			Detail: fmt.Sprintf("port range %q has from greater than to", entry),
		}
	}

	return domain.PortRange{Protocol: protocol, FromPort: fromPort, ToPort: toPort}, nil
}

func malformed(entry string) *domain.Error {
	return &domain.Error{
		Kind:   domain.MalformedPortSpec,
		Detail: fmt.Sprintf("port spec entry %q is not a port or range", entry),
	}
}
