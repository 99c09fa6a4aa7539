package app

import (
	"bytes"
	"testing"
)

// TestRun_ServeCommand_OpensDBConnection 은 serve 커맨드가 DB 연결을 시도하는지 검증한다.
// 테스트 환경에는 DB 가 없으므로 에러 반환을 허용한다.
func TestRun_ServeCommand_OpensDBConnection(t *testing.T) {
	setTestEnv(t)

	var buf bytes.Buffer
	err := Run(&buf, []string{"serve"})
	if err == nil {
		// CI 나 로컬에 DB 가 있으면 서버가 즉시 종료하지 않아 여기 도달할 수 있다.
		t.Log("Run(serve) 성공 - 테스트 환경에 DB 가 존재")
	}
}

// TestRun_DefaultCommand_OpensDBConnection 은 기본 커맨드 (serve) 가 DB 연결을 시도하는지 검증한다.
func TestRun_DefaultCommand_OpensDBConnection(t *testing.T) {
	setTestEnv(t)

	var buf bytes.Buffer
	err := Run(&buf, []string{})
	if err == nil {
		t.Log("Run([]) 성공 - 테스트 환경에 DB 가 존재")
	}
}

// TestRun_MigrateCommand 는 migrate 커맨드가 DB 에 접속을 시도하는지 검증한다.
func TestRun_MigrateCommand(t *testing.T) {
	setTestEnv(t)

	var buf bytes.Buffer
	err := Run(&buf, []string{"migrate"})
	if err == nil {
		t.Log("Run(migrate) 성공 - 테스트 환경에 DB 가 존재")
	}
}

func TestRun_WithMissingEnv_ReturnsError(t *testing.T) {
	clearTestEnv(t)

	var buf bytes.Buffer
	err := Run(&buf, []string{"serve"})
	if err == nil {
		t.Fatal("필수 환경 변수 누락 시 에러를 기대")
	}
}
