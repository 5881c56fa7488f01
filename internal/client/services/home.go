package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/foldershare/internal/client/uistate"
	"github.com/dmitrijs2005/foldershare/internal/common"
	"github.com/dmitrijs2005/foldershare/internal/logging"
)

// HomeAPI is what the home page needs from client.Client.
type HomeAPI interface {
	FolderAPI
	DiagnosticsAPI
}

// HomePage combines the folder list, the create form and the diagnostics.
type HomePage struct {
	folders  *FolderList
	conn     *ConnectionTests
	snackbar *uistate.Snackbar
	log      logging.Logger

	mu         sync.Mutex
	creating   bool
	formStatus uistate.Notice
}

func NewHomePage(api HomeAPI, snackbar *uistate.Snackbar, log logging.Logger) *HomePage {
	if log == nil {
		log = logging.Nop()
	}
	return &HomePage{
		folders:  NewFolderList(api, snackbar, log),
		conn:     NewConnectionTests(api, log),
		snackbar: snackbar,
		log:      log,
	}
}

// Open loads the folder list.
func (p *HomePage) Open(ctx context.Context) error {
	return p.folders.Refresh(ctx)
}

// CreateFolder submits the create form. FormStatus reflects the outcome.
func (p *HomePage) CreateFolder(ctx context.Context, name, password string) error {
	p.mu.Lock()
	if p.creating {
		p.mu.Unlock()
		return ErrBusy
	}
	p.creating = true
	p.formStatus = uistate.Notice{Text: "Creating folder...", Severity: uistate.SeverityInfo}
	p.mu.Unlock()

	folder, err := p.folders.Create(ctx, name, password)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.creating = false
	if err != nil {
		msg := CreateErrorMessage(err)
		if common.IsValidation(err) {
			p.log.Debug(ctx, "create form rejected", "reason", msg)
		}
		p.formStatus = uistate.Notice{Text: "Error: " + msg, Severity: uistate.SeverityError}
		return err
	}
	p.formStatus = uistate.Notice{
		Text:     fmt.Sprintf("Success: Folder '%s' created (ID: %d)", folder.Name, folder.ID),
		Severity: uistate.SeveritySuccess,
	}
	return nil
}

func (p *HomePage) FormStatus() uistate.Notice {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.formStatus
}

func (p *HomePage) Folders() *FolderList { return p.folders }

func (p *HomePage) Connection() *ConnectionTests { return p.conn }

func (p *HomePage) Snackbar() *uistate.Snackbar { return p.snackbar }
