package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/foldershare/internal/client/access"
	"github.com/dmitrijs2005/foldershare/internal/client/models"
	"github.com/dmitrijs2005/foldershare/internal/client/services"
	"github.com/dmitrijs2005/foldershare/internal/common"
)

const timeLayout = "2006-01-02 15:04"

// Ping runs the backend connectivity check.
func (a *App) Ping(ctx context.Context) error {
	status, err := a.home.Connection().TestBackend(ctx)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}
	printlnFn("Backend:", status)
	return nil
}

// TestDB runs the database connectivity check.
func (a *App) TestDB(ctx context.Context) error {
	st, err := a.home.Connection().TestDB(ctx)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}
	printlnFn(fmt.Sprintf("Database: %s - %s", st.Status, st.Message))
	return nil
}

// Folders refreshes and prints the folder list.
func (a *App) Folders(ctx context.Context) error {
	l := a.home.Folders()
	if err := l.Refresh(ctx); err != nil {
		printlnFn("Error:", l.Error())
		return err
	}
	folders := l.Folders()
	if len(folders) == 0 {
		printlnFn("No folders yet. Create one with 'mkdir <name>'.")
		return nil
	}
	printlnFn(renderFolders(folders))
	return nil
}

func renderFolders(folders []models.Folder) string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPROTECTED\tCREATED")
	for _, f := range folders {
		protected := "no"
		if f.IsProtected {
			protected = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", f.ID, f.Name, protected, formatTime(f.CreatedAt, f.BadTimestamp))
	}
	_ = tw.Flush()
	return strings.TrimRight(sb.String(), "\n")
}

func formatTime(t time.Time, bad string) string {
	switch {
	case bad != "":
		return "Invalid Date"
	case t.IsZero():
		return "-"
	}
	return t.Local().Format(timeLayout)
}

// Mkdir creates a folder. An empty name is asked for; the password is
// optional and makes the folder protected.
func (a *App) Mkdir(ctx context.Context, name string) error {
	var err error
	if common.Blank(name) {
		if name, err = a.readLine("Folder name"); err != nil {
			return err
		}
	}
	password, err := a.readSecret("Password (leave empty for a public folder)")
	if err != nil {
		return err
	}

	err = a.home.CreateFolder(ctx, name, password)
	printlnFn(a.home.FormStatus().Text)
	return err
}

// Rmdir deletes a folder after confirmation. Protected folders ask for the
// password until it is accepted or an empty one cancels.
func (a *App) Rmdir(ctx context.Context, id int64) error {
	l := a.home.Folders()
	folder, ok := l.Find(id)
	if !ok {
		if err := l.Refresh(ctx); err != nil {
			printlnFn("Error:", l.Error())
			return err
		}
		folder, ok = l.Find(id)
	}
	if !ok {
		printlnFn(fmt.Sprintf("Folder %d not found.", id))
		return errNotListed
	}

	if err := l.RequestDelete(folder); err != nil {
		printlnFn("Error:", err)
		return err
	}
	d := l.Dialog()
	printlnFn(d.Title())
	printlnFn(d.Text())

	for d.Open() {
		if d.RequiresPassword() {
			pw, err := a.readSecret("Folder password (empty to cancel)")
			if err != nil || pw == "" {
				l.CancelDelete()
				printlnFn("Cancelled.")
				return err
			}
			d.SetPassword(pw)
		} else {
			answer, err := a.readLine("Delete? (y/N)")
			if err != nil || !Confirmed(answer) {
				l.CancelDelete()
				printlnFn("Cancelled.")
				return err
			}
		}

		err := l.ConfirmDelete(ctx)
		if err == nil {
			break
		}
		if d.Open() {
			printlnFn("Error:", d.PasswordError())
			continue
		}
		return err
	}

	if a.folder != nil && a.folder.Access().FolderID() == id {
		a.folder = nil
	}
	return nil
}

// Open loads a folder and makes it current. A protected folder without a
// session grant has to be unlocked before its files are shown.
func (a *App) Open(ctx context.Context, id int64) error {
	p := services.NewFolderDetailPage(a.api, id, a.snackbar, a.log)
	p.Uploader().OnProgress(func(pct int) {
		fmt.Fprintf(a.out, "\rUploading: %3d%%", pct)
		if pct == 100 {
			fmt.Fprintln(a.out)
		}
	})
	p.Access().OnChange(func(s access.State) {
		if s == access.StateNeedsPassword {
			printlnFn("Folder is password protected. Type 'unlock' to enter the password.")
		}
	})

	if err := p.Open(ctx); err != nil {
		if msg := p.Access().LoadError(); msg != "" {
			printlnFn("Error:", msg)
		} else {
			printlnFn("Error:", p.Files().Error())
		}
		if p.Access().State() == access.StateLoadError {
			return err
		}
	}

	a.folder = p
	if f := p.Access().Folder(); f != nil {
		printlnFn(fmt.Sprintf("Opened folder %q.", f.Name))
	}
	if p.Access().Granted() {
		a.printFiles(p)
	}
	return nil
}
