package maum_test

import (
	"os"
	"strings"
	"testing"
)

func TestDockerfileExists(t *testing.T) {
	if _, err := os.Stat("Dockerfile"); err != nil {
		t.Fatalf("Dockerfile 이 있어야 한다: %v", err)
	}
}

func TestDockerfileMultiStageBuild(t *testing.T) {
	data, err := os.ReadFile("Dockerfile")
	if err != nil {
		t.Fatalf("Dockerfile 읽기 실패: %v", err)
	}
	content := string(data)

	// 멀티 스테이지 빌드: Go 빌더 스테이지가 있어야 한다
	if !strings.Contains(content, "FROM golang:") {
		t.Error("Dockerfile 에 Go 빌더 스테이지 (FROM golang:) 가 필요하다")
	}

	// 최종 스테이지는 경량 이미지여야 한다
	var lastFrom string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "FROM ") {
			lastFrom = trimmed
		}
	}
	if !strings.Contains(lastFrom, "gcr.io/distroless") && !strings.Contains(lastFrom, "alpine") && !strings.Contains(lastFrom, "scratch") {
		t.Errorf("최종 스테이지는 경량 베이스 이미지여야 한다: %s", lastFrom)
	}
}

func TestDockerfileBinaryName(t *testing.T) {
	data, err := os.ReadFile("Dockerfile")
	if err != nil {
		t.Fatalf("Dockerfile 읽기 실패: %v", err)
	}

	if !strings.Contains(string(data), "maum") {
		t.Error("Dockerfile 은 maum 바이너리를 빌드해야 한다")
	}
}

func TestDockerfileEntrypoint(t *testing.T) {
	data, err := os.ReadFile("Dockerfile")
	if err != nil {
		t.Fatalf("Dockerfile 읽기 실패: %v", err)
	}
	content := string(data)

	if !strings.Contains(content, "ENTRYPOINT") && !strings.Contains(content, "CMD") {
		t.Error("Dockerfile 에 ENTRYPOINT 또는 CMD 가 필요하다")
	}
}

func TestDockerfileHealthcheck(t *testing.T) {
	data, err := os.ReadFile("Dockerfile")
	if err != nil {
		t.Fatalf("Dockerfile 읽기 실패: %v", err)
	}
	content := string(data)

	// distroless 에는 쉘이 없어 바이너리의 healthcheck 서브커맨드를 써야 한다
	if !strings.Contains(content, "HEALTHCHECK") || !strings.Contains(content, "healthcheck") {
		t.Error("Dockerfile 은 healthcheck 서브커맨드로 HEALTHCHECK 를 정의해야 한다")
	}
}

func TestDockerComposeExists(t *testing.T) {
	if _, err := os.Stat("docker-compose.yml"); err != nil {
		t.Fatalf("docker-compose.yml 이 있어야 한다: %v", err)
	}
}

func TestDockerComposeServices(t *testing.T) {
	data, err := os.ReadFile("docker-compose.yml")
	if err != nil {
		t.Fatalf("docker-compose.yml 읽기 실패: %v", err)
	}
	content := string(data)

	// api, migrate, db 3개 서비스 구성
	for _, svc := range []string{"api:", "migrate:", "db:"} {
		if !strings.Contains(content, svc) {
			t.Errorf("docker-compose.yml 에 서비스 %q 가 필요하다", svc)
		}
	}
}

func TestDockerComposePostgres(t *testing.T) {
	data, err := os.ReadFile("docker-compose.yml")
	if err != nil {
		t.Fatalf("docker-compose.yml 읽기 실패: %v", err)
	}

	if !strings.Contains(string(data), "postgres:") {
		t.Error("docker-compose.yml 은 PostgreSQL 이미지를 사용해야 한다")
	}
}

func TestDockerComposeNetworks(t *testing.T) {
	data, err := os.ReadFile("docker-compose.yml")
	if err != nil {
		t.Fatalf("docker-compose.yml 읽기 실패: %v", err)
	}
	content := string(data)

	// DB 를 내부 네트워크에 격리하는 구성
	if !strings.Contains(content, "networks:") {
		t.Error("docker-compose.yml 에 네트워크 정의가 필요하다")
	}
	if !strings.Contains(content, "internal: true") {
		t.Error("docker-compose.yml 에 내부 네트워크 (internal: true) 가 필요하다")
	}
}
