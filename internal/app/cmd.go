package app

// Command 는 애플리케이션의 기동 모드를 나타낸다.
type Command string

const (
	// CommandServe 는 API 서버 모드로 기동함을 나타낸다.
	CommandServe Command = "serve"
	// CommandMigrate 는 데이터베이스 마이그레이션 실행을 나타낸다.
	CommandMigrate Command = "migrate"
	// CommandHealthcheck 는 헬스체크 실행을 나타낸다.
	// distroless 환경에서의 Docker 헬스체크용.
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand 는 커맨드라인 인수에서 서브커맨드를 해석한다.
// 인수가 없거나 지원하지 않는 커맨드면 CommandServe 를 반환한다.
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch args[0] {
	case "serve":
		return CommandServe
	case "migrate":
		return CommandMigrate
	case "healthcheck":
		return CommandHealthcheck
	default:
		return CommandServe
	}
}
