// Package console is the terminal front end: it owns the current
// fragment, runs the dispatch loop, renders view state and turns key
// input into effect calls. Everything runs on one goroutine, suspending
// only inside API calls.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/courseboard/courseboard/internal/route"
	"github.com/courseboard/courseboard/internal/session"
	"github.com/courseboard/courseboard/internal/view"
	"github.com/rs/zerolog"
)

// Flash timings: success-then-navigate flows dismiss quickly, standalone
// messages linger a little longer.
const (
	navigateDelay = 1500 * time.Millisecond
	messageDelay  = 3 * time.Second
)

var errQuit = errors.New("quit")

// App is the console application.
type App struct {
	effects *view.Effects
	store   *session.Store
	in      *bufio.Reader
	out     io.Writer
	log     zerolog.Logger

	fragment string
	// sleep is swapped out in tests so flashes don't stall them.
	sleep func(time.Duration)
}

// New creates the console app reading from in and drawing to out.
func New(effects *view.Effects, store *session.Store, in io.Reader, out io.Writer, log zerolog.Logger) *App {
	return &App{
		effects: effects,
		store:   store,
		in:      bufio.NewReader(in),
		out:     out,
		log:     log.With().Str("component", "console").Logger(),
		sleep:   time.Sleep,
	}
}

// Run dispatches fragments until the user quits or input ends.
// A redirect rewrites the fragment and loops; it never recurses.
func (a *App) Run(ctx context.Context) error {
	a.fragment = route.DefaultFragment
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		res := route.Resolve(a.fragment, a.store.IsActive())
		if res.Redirect != "" {
			a.fragment = res.Redirect
			continue
		}

		next, err := a.render(ctx, res.Route)
		if err != nil {
			if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
				fmt.Fprintln(a.out, "Goodbye.")
				return nil
			}
			return err
		}
		a.fragment = next
	}
}

// render draws the view for a resolved route and returns the next
// fragment. The switch is exhaustive over route kinds.
func (a *App) render(ctx context.Context, r route.Route) (string, error) {
	switch r.Kind {
	case route.KindLogin:
		return a.loginView(ctx)
	case route.KindRegister:
		return a.registerView(ctx)
	case route.KindDashboard:
		return a.dashboardView(ctx)
	case route.KindCourseList:
		return a.courseListView(ctx)
	case route.KindCourseCreate:
		return a.courseCreateView(ctx)
	case route.KindCourseEdit:
		return a.courseEditView(ctx, r.CourseID)
	case route.KindNotFound:
		return a.notFoundView()
	default:
		return a.notFoundView()
	}
}

// ─── Views ──────────────────────────────────────────────────────────

func (a *App) loginView(ctx context.Context) (string, error) {
	v := view.BuildLogin()
	a.header(v.Title)
	fmt.Fprintln(a.out, v.RegisterHint)

	email, err := a.readLine("Email ('register' to create an account, 'quit' to exit): ")
	if err != nil {
		return "", err
	}
	switch email {
	case "register":
		return route.FragmentRegister, nil
	case "quit", "q":
		return "", errQuit
	}

	password, err := a.readLine("Password: ")
	if err != nil {
		return "", err
	}

	if err := a.effects.Login(ctx, email, password); err != nil {
		a.flash(err.Error())
		return route.FragmentLogin, nil
	}
	return route.FragmentDashboard, nil
}

func (a *App) registerView(ctx context.Context) (string, error) {
	v := view.BuildRegister()
	a.header(v.Title)
	fmt.Fprintln(a.out, v.LoginHint)

	name, err := a.readLine("Name ('login' to sign in instead, 'quit' to exit): ")
	if err != nil {
		return "", err
	}
	switch name {
	case "login":
		return route.FragmentLogin, nil
	case "quit", "q":
		return "", errQuit
	}

	email, err := a.readLine("Email: ")
	if err != nil {
		return "", err
	}
	password, err := a.readLine("Password: ")
	if err != nil {
		return "", err
	}

	if err := a.effects.Register(ctx, name, email, password); err != nil {
		a.flash(err.Error())
		return route.FragmentRegister, nil
	}
	return route.FragmentDashboard, nil
}

func (a *App) dashboardView(ctx context.Context) (string, error) {
	sess, ok, err := a.currentSession(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return route.FragmentLogin, nil
	}

	v := view.BuildDashboard(sess.User)
	a.header("Dashboard")
	fmt.Fprintln(a.out, v.Greeting)
	fmt.Fprintln(a.out, "  [1] View Courses")
	if v.CanCreate {
		fmt.Fprintln(a.out, "  [2] Create Course")
	}
	fmt.Fprintln(a.out, "  [l] Log Out")
	fmt.Fprintln(a.out, "  [q] Quit")

	for {
		choice, err := a.readLine("> ")
		if err != nil {
			return "", err
		}
		switch choice {
		case "1":
			return v.CoursesTo, nil
		case "2":
			if v.CanCreate {
				return v.CreateTo, nil
			}
		case "l":
			if err := a.effects.Logout(ctx); err != nil {
				a.flash(err.Error())
			}
			return route.FragmentLogin, nil
		case "q":
			return "", errQuit
		}
		fmt.Fprintln(a.out, "Unknown choice.")
	}
}

func (a *App) courseListView(ctx context.Context) (string, error) {
	sess, ok, err := a.currentSession(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return route.FragmentLogin, nil
	}

	courses, err := a.effects.FetchCourses(ctx)
	if err != nil {
		a.flash(err.Error())
		return route.FragmentDashboard, nil
	}

	v := view.BuildCourseList(sess.User, courses)
	a.header(v.Title)
	if v.Empty {
		fmt.Fprintln(a.out, "No courses are available right now.")
	}
	for i, row := range v.Rows {
		fmt.Fprintf(a.out, "  %2d. %s — %s (%d/%d enrolled)\n",
			i+1, row.Title, row.Instructor, row.Enrolled, row.Capacity)
	}
	fmt.Fprintln(a.out, "Commands: 'enroll <n>' (students), 'edit <n>' (admins), 'b' back, 'q' quit")

	for {
		line, err := a.readLine("> ")
		if err != nil {
			return "", err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "b", "back":
			return v.BackTo, nil
		case "q", "quit":
			return "", errQuit
		case "enroll", "e", "edit":
			if len(fields) < 2 {
				fmt.Fprintln(a.out, "Which course? Give its number.")
				continue
			}
			n, convErr := strconv.Atoi(fields[1])
			if convErr != nil || n < 1 || n > len(v.Rows) {
				fmt.Fprintln(a.out, "No course with that number.")
				continue
			}
			row := v.Rows[n-1]
			id := strconv.Itoa(row.ID)

			if fields[0] == "edit" {
				if !row.CanEdit {
					fmt.Fprintln(a.out, "Only administrators can edit courses.")
					continue
				}
				return route.EditFragment(id), nil
			}

			if !row.CanEnroll {
				fmt.Fprintln(a.out, "Only students can enroll.")
				continue
			}
			if _, err := a.effects.Enroll(ctx, id); err != nil {
				a.flash(err.Error())
				return route.FragmentCourseList, nil
			}
			a.flash("Enrollment successful!")
			return route.FragmentCourseList, nil
		default:
			fmt.Fprintln(a.out, "Unknown command.")
		}
	}
}

func (a *App) courseCreateView(ctx context.Context) (string, error) {
	sess, ok, err := a.currentSession(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return route.FragmentLogin, nil
	}

	form := view.BuildCourseCreate(sess.User)
	if form == nil {
		return a.notFoundView()
	}

	a.header(form.Heading)
	title, err := a.readLine("Title (empty to cancel): ")
	if err != nil {
		return "", err
	}
	if title == "" {
		return form.CancelTo, nil
	}
	instructor, err := a.readLine("Instructor: ")
	if err != nil {
		return "", err
	}
	capacity, err := a.readCapacity(0)
	if err != nil {
		return "", err
	}

	if err := a.effects.CreateCourse(ctx, title, instructor, capacity); err != nil {
		a.flash(err.Error())
		return route.FragmentCourseCreate, nil
	}

	a.flashNavigate("Course created successfully!")
	return route.FragmentCourseList, nil
}

func (a *App) courseEditView(ctx context.Context, id string) (string, error) {
	sess, ok, err := a.currentSession(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return route.FragmentLogin, nil
	}

	course, err := a.effects.FetchCourse(ctx, id)
	if err != nil {
		return a.notFoundView()
	}

	form := view.BuildCourseEdit(sess.User, *course)
	if form == nil {
		return a.notFoundView()
	}

	a.header(form.Heading)
	fmt.Fprintf(a.out, "Enrolled: %d/%d\n", len(course.Enrolled), course.Capacity)
	fmt.Fprintln(a.out, "  [1] Update")
	fmt.Fprintln(a.out, "  [2] Delete")
	fmt.Fprintln(a.out, "  [0] Cancel")

	for {
		choice, err := a.readLine("> ")
		if err != nil {
			return "", err
		}
		switch choice {
		case "1":
			title, err := a.readLineDefault("Title", form.Title)
			if err != nil {
				return "", err
			}
			instructor, err := a.readLineDefault("Instructor", form.Instructor)
			if err != nil {
				return "", err
			}
			capacity, err := a.readCapacity(form.Capacity)
			if err != nil {
				return "", err
			}

			if err := a.effects.UpdateCourse(ctx, id, title, instructor, capacity); err != nil {
				a.flash(err.Error())
				return route.EditFragment(id), nil
			}
			a.flashNavigate("Course updated successfully!")
			return route.FragmentCourseList, nil
		case "2":
			confirm, err := a.readLine("Are you sure you want to delete this course? (y/n): ")
			if err != nil {
				return "", err
			}
			if confirm != "y" && confirm != "yes" {
				continue
			}
			if err := a.effects.DeleteCourse(ctx, id); err != nil {
				a.flash(err.Error())
				return route.EditFragment(id), nil
			}
			a.flashNavigate("Course deleted successfully!")
			return route.FragmentCourseList, nil
		case "0":
			return form.CancelTo, nil
		case "q":
			return "", errQuit
		}
		fmt.Fprintln(a.out, "Unknown choice.")
	}
}

func (a *App) notFoundView() (string, error) {
	v := view.BuildNotFound()
	a.header("Page Not Found")
	fmt.Fprintln(a.out, v.Message)
	fmt.Fprintln(a.out, "  [1] Go to Dashboard")
	fmt.Fprintln(a.out, "  [q] Quit")

	for {
		choice, err := a.readLine("> ")
		if err != nil {
			return "", err
		}
		switch choice {
		case "1":
			return v.BackTo, nil
		case "q":
			return "", errQuit
		}
		fmt.Fprintln(a.out, "Unknown choice.")
	}
}

// ─── Helpers ────────────────────────────────────────────────────────

// currentSession reads the stored session. An unreadable record is
// cleared and reported, then treated as signed out.
func (a *App) currentSession(ctx context.Context) (*session.Session, bool, error) {
	sess, err := a.store.Current()
	if err != nil {
		a.log.Error().Err(err).Msg("Stored session unreadable")
		a.flash("Your saved session could not be read; please sign in again.")
		if err := a.store.EndSession(ctx); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}
	if sess == nil {
		return nil, false, nil
	}
	return sess, true, nil
}

func (a *App) header(title string) {
	fmt.Fprintf(a.out, "\n── %s ──────────────────────────────\n", title)
}

func (a *App) readLine(prompt string) (string, error) {
	fmt.Fprint(a.out, prompt)
	line, err := a.in.ReadString('\n')
	if err != nil {
		if err == io.EOF && strings.TrimSpace(line) != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readLineDefault prompts with a default kept on empty input.
func (a *App) readLineDefault(label, def string) (string, error) {
	line, err := a.readLine(fmt.Sprintf("%s [%s]: ", label, def))
	if err != nil {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

// readCapacity prompts for a positive capacity; def 0 means required.
func (a *App) readCapacity(def int) (int, error) {
	for {
		prompt := "Capacity: "
		if def > 0 {
			prompt = fmt.Sprintf("Capacity [%d]: ", def)
		}
		line, err := a.readLine(prompt)
		if err != nil {
			return 0, err
		}
		if line == "" && def > 0 {
			return def, nil
		}
		n, convErr := strconv.Atoi(line)
		if convErr == nil && n >= 1 {
			return n, nil
		}
		fmt.Fprintln(a.out, "Capacity must be a positive number.")
	}
}

// flash shows a standalone message that dismisses after messageDelay.
func (a *App) flash(msg string) {
	fmt.Fprintf(a.out, "! %s\n", msg)
	a.sleep(messageDelay)
}

// flashNavigate shows a success message briefly before navigating away.
func (a *App) flashNavigate(msg string) {
	fmt.Fprintf(a.out, "* %s\n", msg)
	a.sleep(navigateDelay)
}
