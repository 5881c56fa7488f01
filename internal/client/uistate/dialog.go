package uistate

import "sync"

// DeleteDialog is the confirmation prompt for deleting a T. While a delete is
// in flight (Busy) it cannot be dismissed or confirmed again.
type DeleteDialog[T any] struct {
	mu               sync.Mutex
	open             bool
	title            string
	text             string
	target           T
	requiresPassword bool
	password         string
	passwordErr      string
	busy             bool
}

// Show opens the dialog for target, resetting any previous input. It is
// refused while busy.
func (d *DeleteDialog[T]) Show(title, text string, target T, requiresPassword bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.busy {
		return false
	}
	d.open = true
	d.title = title
	d.text = text
	d.target = target
	d.requiresPassword = requiresPassword
	d.password = ""
	d.passwordErr = ""
	return true
}

// Close dismisses the dialog. It is refused while busy.
func (d *DeleteDialog[T]) Close() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.busy {
		return false
	}
	var zero T
	d.open = false
	d.target = zero
	d.password = ""
	d.passwordErr = ""
	return true
}

// SetPassword updates the password field and clears its error.
func (d *DeleteDialog[T]) SetPassword(pw string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.password = pw
	d.passwordErr = ""
}

func (d *DeleteDialog[T]) SetPasswordError(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.passwordErr = msg
}

// RejectPassword clears the typed password and shows msg under the field.
func (d *DeleteDialog[T]) RejectPassword(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.password = ""
	d.passwordErr = msg
}

// CanConfirm reports whether the confirm action is enabled.
func (d *DeleteDialog[T]) CanConfirm() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open || d.busy {
		return false
	}
	return !d.requiresPassword || d.password != ""
}

// Begin marks the delete as in flight. It returns false if the dialog is
// closed or already busy.
func (d *DeleteDialog[T]) Begin() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open || d.busy {
		return false
	}
	d.busy = true
	return true
}

func (d *DeleteDialog[T]) End() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.busy = false
}

func (d *DeleteDialog[T]) Open() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

func (d *DeleteDialog[T]) Busy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.busy
}

func (d *DeleteDialog[T]) Target() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.target
}

func (d *DeleteDialog[T]) Title() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.title
}

func (d *DeleteDialog[T]) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text
}

func (d *DeleteDialog[T]) RequiresPassword() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.requiresPassword
}

func (d *DeleteDialog[T]) Password() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.password
}

func (d *DeleteDialog[T]) PasswordError() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.passwordErr
}
