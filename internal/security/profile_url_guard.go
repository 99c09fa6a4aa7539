package security

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// ProfileURLGuardService 는 외부 프로필 이미지 URL 의 SSRF 방지 기능 인터페이스.
// OAuth 제공자에서 받은 URL 과 사용자가 직접 입력한 URL 양쪽에 사용된다.
type ProfileURLGuardService interface {
	// Check 는 URL 의 안전성을 정적으로 검증한다.
	// 스킴, 호스트, IP 주소를 검사해 내부망을 가리키는 URL 을 거부한다.
	Check(rawURL string) error

	// NewSafeClient 는 SSRF 방지 기능이 붙은 HTTP 클라이언트를 생성한다.
	// safeurl 이 DNS 해석 후의 IP 주소까지 Dialer 레벨에서 검증하므로
	// DNS 리바인딩 공격에도 대응된다.
	NewSafeClient(timeout time.Duration) *http.Client
}

// allowedSchemes 는 프로필 이미지 URL 에 허용되는 스킴.
var allowedSchemes = []string{"http", "https"}

// blockedNetworks 는 차단 대상 네트워크 범위.
// 패키지 초기화 시 한 번 파싱해 Check 에서 사용한다.
var blockedNetworks []net.IPNet

func init() {
	cidrs := []string{
		// 사설 IP (RFC 1918)
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		// 루프백 (RFC 1122)
		"127.0.0.0/8",
		// 링크 로컬 (RFC 3927), 클라우드 메타데이터 IP (169.254.169.254) 포함
		"169.254.0.0/16",
		// 현재 네트워크
		"0.0.0.0/8",
		// IPv6 루프백
		"::1/128",
		// IPv6 링크 로컬
		"fe80::/10",
		// IPv6 유니크 로컬
		"fc00::/7",
	}
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("invalid CIDR in blockedNetworks: %s: %v", cidr, err))
		}
		blockedNetworks = append(blockedNetworks, *network)
	}
}

// profileURLGuard 는 ProfileURLGuardService 의 구현.
type profileURLGuard struct{}

// NewProfileURLGuard 는 ProfileURLGuardService 를 생성한다.
func NewProfileURLGuard() *profileURLGuard {
	return &profileURLGuard{}
}

// NewSafeClient 는 SSRF 방지 기능이 붙은 HTTP 클라이언트를 생성한다.
// safeurl 기본 설정으로 사설 IP, 루프백, 링크 로컬, 메타데이터 IP 가 차단된다.
func (g *profileURLGuard) NewSafeClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes(allowedSchemes...).
		SetAllowedPorts(80, 443).
		Build()

	wrappedClient := safeurl.Client(config)
	return wrappedClient.Client
}

// Check 는 URL 의 안전성을 정적으로 검증한다.
// DNS 해석 전의 검사이므로 리바인딩 공격은 NewSafeClient 쪽 Dialer 검증이 막는다.
func (g *profileURLGuard) Check(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if !isAllowedScheme(scheme) {
		return fmt.Errorf("disallowed scheme: %s (allowed: %v)", scheme, allowedSchemes)
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("empty host in URL: %s", rawURL)
	}

	ip := net.ParseIP(host)
	if ip != nil {
		if isBlockedIP(ip) {
			return fmt.Errorf("blocked IP address: %s", ip.String())
		}
		return nil
	}

	if isBlockedHostname(host) {
		return fmt.Errorf("blocked host: %s", host)
	}

	return nil
}

// isAllowedScheme 은 URL 스킴이 허용 목록에 있는지 검사한다.
func isAllowedScheme(scheme string) bool {
	for _, allowed := range allowedSchemes {
		if strings.EqualFold(scheme, allowed) {
			return true
		}
	}
	return false
}

// isBlockedIP 는 IP 가 차단 네트워크 범위에 포함되는지 검사한다.
func isBlockedIP(ip net.IP) bool {
	for _, network := range blockedNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// blockedHostnames 는 차단 대상 호스트명.
var blockedHostnames = []string{
	"localhost",
}

// isBlockedHostname 은 호스트명이 차단 대상인지 검사한다.
func isBlockedHostname(host string) bool {
	lower := strings.ToLower(host)
	for _, blocked := range blockedHostnames {
		if lower == blocked {
			return true
		}
	}
	return false
}
