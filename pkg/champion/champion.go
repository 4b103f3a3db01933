package champion

// Champion is an action owner appearing on the leaderboard.
type Champion struct {
	ID       string
	Name     string
	Email    *string
	Team     *string
	Position *string
	Active   bool
}
