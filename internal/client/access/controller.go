package access

import (
	"context"
	"net/http"
	"sync"

	"github.com/dmitrijs2005/foldershare/internal/client/client"
	"github.com/dmitrijs2005/foldershare/internal/client/models"
	"github.com/dmitrijs2005/foldershare/internal/common"
	"github.com/dmitrijs2005/foldershare/internal/logging"
)

// API is the part of client.Client the controller needs.
type API interface {
	GetFolder(ctx context.Context, id int64) (*models.Folder, error)
	CheckFolderAccess(ctx context.Context, id int64) (*models.AccessResult, error)
	VerifyFolderPassword(ctx context.Context, id int64, password string) error
	GetFileSignedURL(ctx context.Context, fileID int64) (string, error)
}

// Controller is the access state machine of a single folder. It is safe for
// concurrent use.
type Controller struct {
	api      API
	folderID int64
	log      logging.Logger
	cache    *URLCache

	mu          sync.Mutex
	state       State
	folder      *models.Folder
	passwordErr string
	loadErr     string
	verifying   bool
	loadGen     uint64
	onChange    func(State)
}

func NewController(api API, folderID int64, log logging.Logger) *Controller {
	if log == nil {
		log = logging.Nop()
	}
	return &Controller{
		api:      api,
		folderID: folderID,
		log:      log.With("folder_id", folderID),
		cache:    NewURLCache(),
	}
}

// OnChange registers fn to be called after every state transition.
func (c *Controller) OnChange(fn func(State)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// setLocked changes the state and returns the hook to run after unlocking.
func (c *Controller) setLocked(s State) func() {
	if c.state == s {
		return func() {}
	}
	from := c.state
	c.state = s
	fn := c.onChange
	return func() {
		c.log.Debug(context.Background(), "folder access state changed", "from", from.String(), "to", s.String())
		if fn != nil {
			fn(s)
		}
	}
}

// Load fetches the folder and resolves its access state. It can be called
// again to retry after LoadError.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	c.loadGen++
	gen := c.loadGen
	c.folder = nil
	c.passwordErr = ""
	c.loadErr = ""
	c.cache.Clear()
	notify := c.setLocked(StateLoading)
	c.mu.Unlock()
	notify()

	folder, err := c.api.GetFolder(ctx, c.folderID)
	if err != nil {
		c.log.Warn(ctx, "folder load failed", "error", err)
		c.finishLoad(gen, nil, StateLoadError, loadErrorMessage(err))
		return err
	}

	if !folder.IsProtected {
		c.finishLoad(gen, folder, StatePublic, "")
		return nil
	}

	next := StateNeedsPassword
	res, err := c.api.CheckFolderAccess(ctx, c.folderID)
	switch {
	case err != nil:
		c.log.Warn(ctx, "access check failed", "error", err)
	case res.Access:
		next = StateVerified
	default:
		c.log.Debug(ctx, "access check denied", "reason", res.Reason)
	}
	c.finishLoad(gen, folder, next, "")
	return nil
}

func (c *Controller) finishLoad(gen uint64, folder *models.Folder, s State, loadErr string) {
	c.mu.Lock()
	if gen != c.loadGen {
		c.mu.Unlock()
		return
	}
	c.folder = folder
	c.loadErr = loadErr
	notify := c.setLocked(s)
	c.mu.Unlock()
	notify()
}

func loadErrorMessage(err error) string {
	if msg := client.ServerMessage(err, ""); msg != "" {
		return msg
	}
	if client.IsNetwork(err) {
		return "No response received from server."
	}
	return "Failed folder fetch"
}

// SubmitPassword verifies pw for the folder. An empty password is refused
// locally. On failure the state stays NeedsPassword and PasswordError holds
// the reason.
func (c *Controller) SubmitPassword(ctx context.Context, pw string) error {
	c.mu.Lock()
	if c.state != StateNeedsPassword {
		c.mu.Unlock()
		return ErrNoPasswordNeeded
	}
	if c.verifying {
		c.mu.Unlock()
		return common.ErrBusy
	}
	if pw == "" {
		c.passwordErr = "Password required."
		c.mu.Unlock()
		return common.Validationf("Password required.")
	}
	c.verifying = true
	c.passwordErr = ""
	c.mu.Unlock()

	err := c.api.VerifyFolderPassword(ctx, c.folderID, pw)

	c.mu.Lock()
	c.verifying = false
	if err != nil {
		c.passwordErr = client.ServerMessage(err, "Verification failed")
		c.mu.Unlock()
		c.log.Info(ctx, "folder password rejected", "status", client.StatusCode(err))
		return err
	}
	notify := c.setLocked(StateVerified)
	c.mu.Unlock()
	notify()

	c.log.Info(ctx, "folder password verified")
	return nil
}

// HandleError inspects the error of a gated operation. A 401 while Verified
// means the server dropped the session grant: the folder goes back to
// NeedsPassword and cached signed URLs are discarded. It reports whether
// access was revoked.
func (c *Controller) HandleError(err error) bool {
	if client.StatusCode(err) != http.StatusUnauthorized {
		return false
	}

	c.mu.Lock()
	if c.state != StateVerified {
		c.mu.Unlock()
		return false
	}
	c.cache.Clear()
	notify := c.setLocked(StateNeedsPassword)
	c.mu.Unlock()
	notify()

	c.log.Info(context.Background(), "folder access revoked by server")
	return true
}

// Permit returns nil when file operations are allowed, otherwise a
// *DeniedError naming action, e.g. "view".
func (c *Controller) Permit(action string) error {
	if c.State().Granted() {
		return nil
	}
	return &DeniedError{Action: action}
}

// SignedURL returns a signed URL for a file of this folder, from the cache
// when possible.
func (c *Controller) SignedURL(ctx context.Context, fileID int64) (string, error) {
	if err := c.Permit("view"); err != nil {
		return "", err
	}
	if u, ok := c.cache.Get(fileID); ok {
		return u, nil
	}

	u, err := c.api.GetFileSignedURL(ctx, fileID)
	if err != nil {
		c.HandleError(err)
		return "", err
	}
	c.cache.Put(fileID, u)
	return u, nil
}

func (c *Controller) FolderID() int64 { return c.folderID }

// Cache exposes the signed URL cache for read access.
func (c *Controller) Cache() *URLCache { return c.cache }

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Granted() bool { return c.State().Granted() }

// Folder returns a copy of the loaded folder, or nil.
func (c *Controller) Folder() *models.Folder {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.folder == nil {
		return nil
	}
	f := *c.folder
	return &f
}

func (c *Controller) PasswordError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.passwordErr
}

func (c *Controller) LoadError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadErr
}

// Busy reports whether a password verification is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.verifying
}
