package util

import (
	"net"
	"net/url"
	"strings"

	"github.com/snatchbot/snatch/internal/config"
)

type URLValidation struct {
	Valid bool
	Error string
}

// ValidateURL is the transport-boundary filter: only requests that pass
// it may reach the orchestrator. The extraction engine is the real
// validator of whether a URL points at downloadable media; this just
// rejects things that are not HTTP(S) URLs at all, plus private hosts so
// the engine can't be pointed at internal services.
func ValidateURL(rawURL string) URLValidation {
	if rawURL == "" {
		return URLValidation{false, "URL is required"}
	}
	if len(rawURL) > config.MaxURLLength {
		return URLValidation{false, "URL is too long"}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return URLValidation{false, "Invalid URL format"}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return URLValidation{false, "Only HTTP/HTTPS URLs are allowed"}
	}
	if isPrivateHost(strings.ToLower(parsed.Hostname())) {
		return URLValidation{false, "Private/local URLs are not allowed"}
	}

	return URLValidation{true, ""}
}

var privateNets []*net.IPNet

func init() {
	cidrs := []string{
		"127.0.0.0/8",
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"0.0.0.0/8",
		"169.254.0.0/16",
		"::1/128",
		"fe80::/10",
		"fc00::/7",
	}
	for _, cidr := range cidrs {
		_, network, _ := net.ParseCIDR(cidr)
		privateNets = append(privateNets, network)
	}
}

func isPrivateIP(ip net.IP) bool {
	for _, network := range privateNets {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

func isPrivateHost(hostname string) bool {
	if hostname == "" || hostname == "localhost" {
		return true
	}

	ip := net.ParseIP(hostname)
	if ip == nil {
		ip = net.ParseIP(strings.Trim(hostname, "[]"))
	}
	if ip != nil {
		return isPrivateIP(ip)
	}

	ips, err := net.LookupIP(hostname)
	if err != nil {
		return true
	}
	for _, resolved := range ips {
		if isPrivateIP(resolved) {
			return true
		}
	}
	return false
}
