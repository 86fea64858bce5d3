package game

// Telegram's 🏀 dice mechanic produces values 1 through 5.
// 4 and 5 mean the ball went in.
const (
	MinRollValue = 1
	MaxRollValue = 5

	winThreshold = 4
)

// IsWinningRoll classifies a rolled value as a score or a miss. It is pure
// and total over [MinRollValue, MaxRollValue]; anything outside that domain
// is ErrInvalidRoll, never a silent default.
func IsWinningRoll(value int) (bool, error) {
	if value < MinRollValue || value > MaxRollValue {
		return false, ErrInvalidRoll
	}
	return value >= winThreshold, nil
}
