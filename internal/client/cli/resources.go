package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/studyshare/studyshare-client/internal/client/models"
	"github.com/studyshare/studyshare-client/internal/client/services"
)

var errUsage = errors.New("usage")

// idArg parses args[0] as a resource id, printing usage on failure.
func (a *App) idArg(args []string, usage string) (int64, error) {
	if len(args) == 0 {
		a.println("Usage:", usage)
		return 0, errUsage
	}
	id, err := services.ParseID(args[0])
	if err != nil {
		return 0, a.fail(err)
	}
	return id, nil
}

func (a *App) List(ctx context.Context) error {
	res, err := a.resources.List(ctx, models.ResourceFilter{})
	if err != nil {
		return a.fail(err)
	}
	a.printResources(res)
	return nil
}

func (a *App) Mine(ctx context.Context) error {
	res, err := a.resources.Mine(ctx)
	if err != nil {
		return a.fail(err)
	}
	a.printResources(res)
	return nil
}

// Show prints a resource's details followed by its comments.
func (a *App) Show(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "show <id>")
	if err != nil {
		return err
	}
	r, err := a.resources.Get(ctx, id)
	if err != nil {
		return a.fail(err)
	}

	a.printf("#%d %s\n", r.ID, r.Title)
	if r.Description != "" {
		a.printf("%s\n", r.Description)
	}
	a.printf("  Subject:   %s\n", r.Subject)
	a.printf("  Topic:     %s\n", r.Topic)
	if r.CourseCode != "" {
		a.printf("  Course:    %s\n", r.CourseCode)
	}
	a.printf("  Uploader:  %s\n", formatUser(r.Uploader))
	if tags := r.TagNames(); len(tags) > 0 {
		a.printf("  Tags:      %s\n", strings.Join(tags, ", "))
	}
	a.printf("  Rating:    %s\n", formatRating(r.AverageRating))
	a.printf("  File:      %s\n", r.FileName())

	return a.Comments(ctx, args)
}

func (a *App) Preview(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "preview <id>")
	if err != nil {
		return err
	}
	if _, err := a.resources.Preview(ctx, a.out, id); err != nil {
		return a.fail(err)
	}
	return nil
}

func (a *App) Download(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "download <id>")
	if err != nil {
		return err
	}
	path, err := a.resources.Download(ctx, id)
	if err != nil {
		return a.fail(err)
	}
	a.printf("Saved to %s\n", path)
	return nil
}

func (a *App) Rate(ctx context.Context, args []string) error {
	if len(args) < 2 {
		a.println("Usage: rate <id> <1-5>")
		return errUsage
	}
	id, err := a.idArg(args, "rate <id> <1-5>")
	if err != nil {
		return err
	}
	value, err := strconv.Atoi(args[1])
	if err != nil {
		return a.fail(models.ErrRatingOutOfRange)
	}
	if _, err := a.resources.Rate(ctx, id, value); err != nil {
		return a.fail(err)
	}
	a.printf("Rated resource #%d with %d/5.\n", id, value)
	return nil
}

func (a *App) Comment(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "comment <id>")
	if err != nil {
		return err
	}
	text, err := getMultiline(a.reader, "Enter your comment:", a.out)
	if err != nil {
		return err
	}
	if _, err := a.resources.Comment(ctx, id, text); err != nil {
		return a.fail(err)
	}
	a.println("Comment added.")
	return nil
}

func (a *App) Comments(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "comments <id>")
	if err != nil {
		return err
	}
	comments, err := a.resources.Comments(ctx, id)
	if err != nil {
		return a.fail(err)
	}
	if len(comments) == 0 {
		a.println("No comments yet.")
		return nil
	}
	a.printf("Comments (%d):\n", len(comments))
	for _, c := range comments {
		a.printf("  %s", formatUser(c.User))
		if !c.CreatedAt.IsZero() {
			a.printf(" on %s", c.CreatedAt.Format("2006-01-02 15:04"))
		}
		a.printf(":\n    %s\n", strings.ReplaceAll(c.Content, "\n", "\n    "))
	}
	return nil
}

// Search prompts for a query and optional filters.
func (a *App) Search(ctx context.Context) error {
	var q models.SearchQuery
	prompts := []struct {
		text string
		dst  *string
	}{
		{"Search for", &q.Query},
		{"Subject (optional)", &q.Subject},
		{"Topic (optional)", &q.Topic},
		{"Uploader (optional)", &q.Uploader},
	}
	for _, p := range prompts {
		v, err := getSimpleText(a.reader, p.text, a.out)
		if err != nil {
			return err
		}
		*p.dst = v
	}

	res, err := a.resources.Search(ctx, q)
	if err != nil {
		return a.fail(err)
	}
	a.printResources(res)
	return nil
}

func (a *App) Tags(ctx context.Context) error {
	tags, err := a.resources.Tags(ctx)
	if err != nil {
		return a.fail(err)
	}
	if len(tags) == 0 {
		a.println("No tags.")
		return nil
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	a.println(strings.Join(names, ", "))
	return nil
}

// Upload prompts for a local file and its metadata and creates a resource.
func (a *App) Upload(ctx context.Context) error {
	var nr models.NewResource
	var path, tags string
	prompts := []struct {
		text string
		dst  *string
	}{
		{"File path", &path},
		{"Title", &nr.Title},
		{"Description", &nr.Description},
		{"Subject", &nr.Subject},
		{"Topic", &nr.Topic},
		{"Course code", &nr.CourseCode},
		{"Tags (comma-separated, optional)", &tags},
	}
	for _, p := range prompts {
		v, err := getSimpleText(a.reader, p.text, a.out)
		if err != nil {
			return err
		}
		*p.dst = v
	}
	nr.Tags = models.ParseTagList(tags)

	r, err := a.resources.Upload(ctx, nr, path)
	if err != nil {
		return a.fail(err)
	}
	a.printf("Uploaded resource #%d %s.\n", r.ID, r.Title)
	return nil
}

// Delete asks for confirmation before removing one of the user's resources.
func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "delete <id>")
	if err != nil {
		return err
	}
	answer, err := getSimpleText(a.reader, fmt.Sprintf("Delete resource #%d? (y/N)", id), a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		a.println("Cancelled.")
		return nil
	}
	if err := a.resources.Delete(ctx, id); err != nil {
		return a.fail(err)
	}
	a.printf("Deleted resource #%d.\n", id)
	return nil
}

func (a *App) printResources(res []models.Resource) {
	if len(res) == 0 {
		a.println("No resources found.")
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSUBJECT\tTOPIC\tUPLOADER\tRATING")
	for _, r := range res {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Title, r.Subject, r.Topic, formatUser(r.Uploader), formatRating(r.AverageRating))
	}
	_ = tw.Flush()
}

func formatRating(v float64) string {
	if v <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f/5", v)
}
