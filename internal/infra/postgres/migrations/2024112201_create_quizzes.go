package migrations

func init() {
	Migrations.MustRegister(execFile("create_quizzes.sql"), dropTable("quizzes"))
}
