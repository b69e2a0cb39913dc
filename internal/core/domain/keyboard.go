package domain

// Button triggers Command as if the user had typed it when pressed.
type Button struct {
	Label   string
	Command string
}

// Keyboard is a platform-neutral inline keyboard descriptor; each sender
// translates it to its platform's markup.
type Keyboard struct {
	Rows [][]Button
}

func NewKeyboard(rows ...[]Button) *Keyboard {
	return &Keyboard{Rows: rows}
}
