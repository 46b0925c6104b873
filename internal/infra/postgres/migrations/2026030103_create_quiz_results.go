package migrations

func init() {
	Migrations.MustRegister(execFile("create_quiz_results.sql"), dropTable("quiz_results"))
}
