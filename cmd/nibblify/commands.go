package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/term"

	"nibblify/internal/model"
	"nibblify/internal/views"
)

var errUsage = errors.New("invalid arguments")

// idList collects a repeatable -tag flag.
type idList []model.ID

func (l *idList) String() string {
	parts := make([]string, len(*l))
	for i, id := range *l {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}

func (l *idList) Set(v string) error {
	*l = append(*l, model.ID(v))
	return nil
}

// parse accepts flags anywhere among the positional arguments, so
// "edit 3 -title x" and "search foo -limit 5 bar" both work. Positionals are
// returned in their original order; everything after "--" is positional.
func parse(fs *flag.FlagSet, args []string) ([]string, error) {
	fs.SetOutput(os.Stderr)
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if consumed := len(args) - len(rest); consumed > 0 && args[consumed-1] == "--" {
			return append(pos, rest...), nil
		}
		if len(rest) == 0 {
			return pos, nil
		}
		pos = append(pos, rest[0])
		args = rest[1:]
	}
}

// oneArg returns the single positional argument.
func oneArg(pos []string, what string) (string, error) {
	if len(pos) != 1 {
		fmt.Fprintf(os.Stderr, "expected exactly one %s\n", what)
		return "", errUsage
	}
	return pos[0], nil
}

// readPassword uses the flag value, then NIBBLIFY_PASSWORD, then prompts
// without echo when stdin is a terminal.
func readPassword(value string) (string, error) {
	if value != "" {
		return value, nil
	}
	if v := os.Getenv("NIBBLIFY_PASSWORD"); v != "" {
		return v, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", nil
	}
	fmt.Fprint(os.Stderr, "Password: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

func parseOptionalBool(s string) (*bool, error) {
	if s == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("invalid boolean %q", s)
	}
	return &b, nil
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account e-mail")
	password := fs.String("password", "", "account password (prompted when omitted)")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	pw, err := readPassword(*password)
	if err != nil {
		return err
	}

	v := views.NewLoginView(a.api.Auth, a.nav)
	err = v.Submit(ctx, *email, pw)
	v.Render(os.Stdout)
	return err
}

func runRegister(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	email := fs.String("email", "", "account e-mail")
	name := fs.String("name", "", "full name")
	password := fs.String("password", "", "account password (prompted when omitted)")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	pw, err := readPassword(*password)
	if err != nil {
		return err
	}

	v := views.NewRegisterView(a.api.Auth, a.nav)
	err = v.Submit(ctx, *email, pw, *name)
	v.Render(os.Stdout)
	return err
}

func runLogout(_ context.Context, a *app, _ []string) error {
	if err := a.api.Auth.Logout(); err != nil {
		return err
	}
	fmt.Println("Signed out.")
	return nil
}

func runWhoAmI(ctx context.Context, a *app, _ []string) error {
	v := views.NewWhoAmIView(a.api.Auth, a.nav)
	err := v.Load(ctx)
	v.Render(os.Stdout)
	return err
}

func runList(ctx context.Context, a *app, _ []string) error {
	v := views.NewListView(a.api.Documents, a.nav)
	err := v.Load(ctx)
	v.Render(os.Stdout)
	return err
}

func runShow(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	pos, err := parse(fs, args)
	if err != nil {
		return err
	}
	id, err := oneArg(pos, "document id")
	if err != nil {
		return err
	}
	a.nav.Go(views.DocumentRoute(model.ID(id)))

	v := views.NewDetailView(a.api.Documents, a.nav)
	err = v.Load(ctx, model.ID(id))
	v.Render(os.Stdout)
	return err
}

func runCreate(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	title := fs.String("title", "", "document title")
	content := fs.String("content", "", "document text")
	url := fs.String("url", "", "source URL")
	var tags idList
	fs.Var(&tags, "tag", "tag id (repeatable)")
	if _, err := parse(fs, args); err != nil {
		return err
	}

	in := model.CreateDocumentInput{Title: *title, URL: *url, TagIDs: tags}
	if *content != "" {
		in.Content = content
	}
	v := views.NewFormView(a.api.Documents, a.nav, nil)
	err := v.Create(ctx, in)
	v.Render(os.Stdout)
	return err
}

func runEdit(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	title := fs.String("title", "", "new title")
	content := fs.String("content", "", "new text")
	archived := fs.String("archived", "", "archive state, true or false")
	pos, err := parse(fs, args)
	if err != nil {
		return err
	}
	id, err := oneArg(pos, "document id")
	if err != nil {
		return err
	}

	var patch model.UpdateDocumentInput
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			patch.Title = title
		case "content":
			patch.Content = content
		}
	})
	if patch.IsArchived, err = parseOptionalBool(*archived); err != nil {
		return err
	}
	if patch.Empty() {
		fmt.Fprintln(os.Stderr, "nothing to change")
		return errUsage
	}
	a.nav.Go(views.DocumentRoute(model.ID(id)))

	v := views.NewFormView(a.api.Documents, a.nav, nil)
	err = v.Edit(ctx, model.ID(id), patch)
	v.Render(os.Stdout)
	return err
}

func runDelete(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	pos, err := parse(fs, args)
	if err != nil {
		return err
	}
	id, err := oneArg(pos, "document id")
	if err != nil {
		return err
	}

	v := views.NewListView(a.api.Documents, a.nav)
	err = v.Delete(ctx, model.ID(id))
	v.Render(os.Stdout)
	return err
}

func runUpload(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	title := fs.String("title", "", "document title (defaults to the file name)")
	var tags idList
	fs.Var(&tags, "tag", "tag id (repeatable)")
	pos, err := parse(fs, args)
	if err != nil {
		return err
	}
	path, err := oneArg(pos, "file")
	if err != nil {
		return err
	}

	v := views.NewUploadView(a.api.Documents, a.nav, nil, os.Stderr)
	var data []byte
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		if data, err = os.ReadFile(path); err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
	}
	err = v.Submit(ctx, filepath.Base(path), data, *title, tags)
	v.Render(os.Stdout)
	return err
}

func runSearch(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	page := fs.Int("page", model.DefaultSearchPage, "page number")
	limit := fs.Int("limit", model.DefaultSearchLimit, "results per page")
	all := fs.Bool("all", false, "fetch every page")
	archived := fs.String("archived", "", "only archived (true) or unarchived (false) documents")
	fileType := fs.String("type", "", "only documents of this file type")
	pos, err := parse(fs, args)
	if err != nil {
		return err
	}
	query := strings.Join(pos, " ")

	filters := map[string]any{}
	isArchived, err := parseOptionalBool(*archived)
	if err != nil {
		return err
	}
	if isArchived != nil {
		filters["is_archived"] = *isArchived
	}
	if *fileType != "" {
		filters["file_type"] = *fileType
	}

	v := views.NewSearchView(a.api.Documents, a.nav, a.cfg.Client.SearchPageRate)
	if *all {
		err = v.RunAll(ctx, query, filters, *limit)
	} else {
		err = v.Run(ctx, query, filters, *page, *limit)
	}
	v.Render(os.Stdout)
	return err
}

func runTags(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("tags", flag.ContinueOnError)
	create := fs.String("create", "", "create a tag with this name")
	if _, err := parse(fs, args); err != nil {
		return err
	}

	v := views.NewTagsView(a.api.Tags, a.nav)
	var err error
	if *create != "" {
		err = v.Create(ctx, *create)
	} else {
		err = v.Load(ctx)
	}
	v.Render(os.Stdout)
	return err
}
