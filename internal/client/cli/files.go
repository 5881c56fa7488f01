package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/foldershare/internal/client/access"
	"github.com/dmitrijs2005/foldershare/internal/client/client"
	"github.com/dmitrijs2005/foldershare/internal/client/models"
	"github.com/dmitrijs2005/foldershare/internal/client/services"
	"github.com/dmitrijs2005/foldershare/internal/filex"
	"github.com/dmitrijs2005/foldershare/internal/netx"
)

var (
	errNoFolder  = errors.New("no folder is open")
	errNotListed = errors.New("not listed")
)

func (a *App) requireFolder() (*services.FolderDetailPage, error) {
	if a.folder == nil {
		printlnFn("Open a folder first with 'open <id>'.")
		return nil, errNoFolder
	}
	return a.folder, nil
}

// reportFileError prints what the page has not already announced. Access
// denials were posted to the snackbar.
func reportFileError(err error, id int64) {
	switch {
	case errors.Is(err, access.ErrAccessDenied):
	case errors.Is(err, services.ErrFileNotListed):
		printlnFn(fmt.Sprintf("File %d is not in the list. Run 'files' to refresh.", id))
	default:
		printlnFn("Error:", err)
	}
}

// Unlock asks for the folder password and lists the files once accepted.
func (a *App) Unlock(ctx context.Context) error {
	p, err := a.requireFolder()
	if err != nil {
		return err
	}
	if p.Access().State() != access.StateNeedsPassword {
		printlnFn("Folder does not need a password.")
		return access.ErrNoPasswordNeeded
	}

	pw, err := a.readSecret("Folder password")
	if err != nil {
		return err
	}
	if err := p.Unlock(ctx, pw); err != nil {
		if msg := p.Access().PasswordError(); msg != "" {
			printlnFn("Error:", msg)
		} else {
			printlnFn("Error:", p.Files().Error())
		}
		return err
	}

	printlnFn("Access granted.")
	a.printFiles(p)
	return nil
}

// Files refreshes and prints the file list of the open folder.
func (a *App) Files(ctx context.Context) error {
	p, err := a.requireFolder()
	if err != nil {
		return err
	}
	if err := p.Refresh(ctx); err != nil {
		if !errors.Is(err, access.ErrAccessDenied) {
			printlnFn("Error:", p.Files().Error())
		}
		return err
	}
	a.printFiles(p)
	return nil
}

func (a *App) printFiles(p *services.FolderDetailPage) {
	files := p.Files().Files()
	if len(files) == 0 {
		printlnFn("This folder is empty.")
		return
	}
	printlnFn(renderFiles(files))
}

func renderFiles(files []models.File) string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSIZE\tUPLOADED")
	for _, f := range files {
		mt := f.MimeType
		if mt == "" {
			mt = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", f.ID, f.Name, mt, models.FormatFileSize(f.Size),
			formatTime(f.UploadedAt, f.BadTimestamp))
	}
	_ = tw.Flush()
	return strings.TrimRight(sb.String(), "\n")
}

// Upload sends a local file to the open folder.
func (a *App) Upload(ctx context.Context, path string) error {
	p, err := a.requireFolder()
	if err != nil {
		return err
	}

	_, err = p.Upload(ctx, path)
	var ae *client.APIError
	switch {
	case errors.Is(err, access.ErrAccessDenied):
		return err
	case err == nil, errors.As(err, &ae):
		printlnFn(p.Uploader().Status().Text)
	default:
		printlnFn("Error:", err)
	}
	if err != nil {
		return err
	}
	a.printFiles(p)
	return nil
}

// Rm deletes a file of the open folder after confirmation.
func (a *App) Rm(ctx context.Context, id int64) error {
	p, err := a.requireFolder()
	if err != nil {
		return err
	}
	if err := p.RequestDeleteFile(id); err != nil {
		reportFileError(err, id)
		return err
	}

	d := p.Files().Dialog()
	printlnFn(d.Title())
	printlnFn(d.Text())
	answer, err := a.readLine("Delete? (y/N)")
	if err != nil || !Confirmed(answer) {
		p.CancelDelete()
		printlnFn("Cancelled.")
		return err
	}

	if err := p.ConfirmDeleteFile(ctx); err != nil {
		return err
	}
	a.printFiles(p)
	return nil
}

// View downloads a file through its signed URL into the download directory.
func (a *App) View(ctx context.Context, id int64) error {
	p, err := a.requireFolder()
	if err != nil {
		return err
	}

	u, err := p.View(ctx, id)
	if err != nil {
		if errors.Is(err, access.ErrAccessDenied) || errors.Is(err, services.ErrFileNotListed) {
			reportFileError(err, id)
		} else if msg := p.URLError(); msg != "" {
			printlnFn(msg)
		} else {
			printlnFn("Error:", err)
		}
		return err
	}
	defer p.CloseViewer()

	_, file, _ := p.Files().Find(id)
	dir, err := filex.EnsureDir(a.config.DownloadDir)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}
	path, err := filex.SafeJoin(dir, file.Name)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}

	n, err := netx.DownloadToFile(ctx, a.download, u, path)
	if err != nil {
		a.log.Warn(ctx, "download failed", "file_id", id, "error", err)
		printlnFn("Error:", err)
		return err
	}

	a.log.Info(ctx, "file downloaded", "file_id", id, "bytes", n)
	printlnFn(fmt.Sprintf("Saved %q (%s) to %s", file.Name, models.FormatFileSize(n), path))
	return nil
}

// Link prints a shareable signed URL for a file.
func (a *App) Link(ctx context.Context, id int64) error {
	p, err := a.requireFolder()
	if err != nil {
		return err
	}
	u, err := p.CopyLink(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrFileNotListed) {
			reportFileError(err, id)
		}
		return err
	}
	printlnFn(u)
	return nil
}

// Back closes the open folder and shows the folder list.
func (a *App) Back(ctx context.Context) error {
	a.folder = nil
	return a.Folders(ctx)
}
