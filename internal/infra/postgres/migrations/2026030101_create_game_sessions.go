package migrations

func init() {
	Migrations.MustRegister(execFile("create_game_sessions.sql"), dropTable("game_sessions"))
}
