package migrations

func init() {
	Migrations.MustRegister(execFile("create_game_scores.sql"), dropTable("game_scores"))
}
