// ABOUTME: Operator CLI for the registrar identity and lifecycle API
// ABOUTME: Manages dual sessions, faculty provisioning, and deactivation gates

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/campushq/registrar/internal/client"
	"github.com/campushq/registrar/internal/guard"
	"github.com/campushq/registrar/internal/lifecycle"
	"github.com/campushq/registrar/internal/provision"
	"github.com/campushq/registrar/internal/session"
	"github.com/campushq/registrar/internal/store"
)

const banner = `
                _     _
 _ __ ___  __ _(_)___| |_ _ __ __ _ _ __
| '__/ _ \/ _' | / __| __| '__/ _' | '__|
| | |  __/ (_| | \__ \ |_| | | (_| | |
|_|  \___|\__, |_|___/\__|_|  \__,_|_|
          |___/
`

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "status":
		err = cmdStatus(ctx)
	case "login":
		err = cmdLogin(ctx, args)
	case "logout":
		err = cmdLogout(ctx, args)
	case "whoami":
		err = cmdWhoami(ctx)
	case "users":
		err = cmdUsers(ctx, args)
	case "faculty":
		err = cmdFaculty(ctx, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()
	fmt.Println("Usage: registrar <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  status                       Show the server and both session slots")
	fmt.Println("  whoami                       Show the signed-in identities")
	fmt.Println("  login institution            Sign in as the institution")
	fmt.Println("  login <student|faculty|admin>  Sign in as a user with that role")
	fmt.Println("  logout [institution|user]    Sign out (both slots when omitted)")
	fmt.Println("  users list [--role R]        List user identities")
	fmt.Println("  faculty list                 List faculty records")
	fmt.Println("  faculty show <id>            Show one faculty record with courses")
	fmt.Println("  faculty add                  Provision a faculty member (identity + record)")
	fmt.Println("  faculty deactivate <id>      Deactivate after resolving open assignments")
	fmt.Println("  faculty activate <id>        Reactivate an inactive record")
	fmt.Println("  faculty finish <id>          Finish one course assignment")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  REGISTRAR_URL                API base URL (default: http://localhost:8080)")
	fmt.Println()
	yellow.Println("Examples:")
	fmt.Println("  registrar login institution")
	fmt.Println("  registrar faculty add --name 'Grace Hopper' --email grace@example.edu \\")
	fmt.Println("      --department dept-cs --designation Professor")
	fmt.Println("  registrar faculty deactivate fac-123 --finish-all")
	fmt.Println()
}

func baseURL() string {
	if url := os.Getenv("REGISTRAR_URL"); url != "" {
		return url
	}
	return "http://localhost:8080"
}

// env bundles the client and the bootstrapped session store
type env struct {
	client *client.Client
	store  *session.Store
}

// newEnv builds the client and session store and resolves both slots
func newEnv(ctx context.Context) (*env, error) {
	keyringPath, err := session.DefaultKeyringPath()
	if err != nil {
		return nil, err
	}

	c := client.New(baseURL())
	s := session.NewStore(session.NewFileKeyring(keyringPath))
	g := session.NewGateway(s, session.VerifierAdapter{Client: c})
	if err := g.Bootstrap(ctx); err != nil {
		return nil, fmt.Errorf("resolving sessions: %w", err)
	}
	return &env{client: c, store: s}, nil
}

// institutionCredential enforces the institution guard and returns the bearer
// token for API calls.
func (e *env) institutionCredential() (string, error) {
	slot := e.store.Slot(session.KindInstitution)
	d := guard.Protected(slot, session.KindInstitution, "")
	if d.Action != guard.ActionRender {
		return "", fmt.Errorf("institution session required (sign in at %s): run 'registrar login institution'", d.Target)
	}
	return slot.Credential, nil
}

// dropIfUnauthorized signs the slot out when the server rejected its credential
func (e *env) dropIfUnauthorized(kind session.Kind, err error) {
	if client.IsUnauthorized(err) {
		e.store.Logout(kind)
		color.Yellow("Session expired; signed out %s slot.\n", kind)
	}
}

func cmdStatus(ctx context.Context) error {
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()

	e, err := newEnv(ctx)
	if err != nil {
		return err
	}

	if err := e.client.Health(ctx); err != nil {
		yellow.Printf("  Server:      ")
		color.Red("UNREACHABLE (%v)\n", err)
	} else {
		green.Printf("  Server:      ")
		fmt.Printf("connected to %s\n", baseURL())
	}

	printSlot := func(label string, kind session.Kind) {
		slot := e.store.Slot(kind)
		if !slot.Authenticated {
			yellow.Printf("  %s ", label)
			fmt.Println("(not signed in)")
			return
		}
		green.Printf("  %s ", label)
		if slot.Identity.Role != "" {
			fmt.Printf("%s <%s> [%s]\n", slot.Identity.Name, slot.Identity.Email, slot.Identity.Role)
		} else {
			fmt.Printf("%s <%s>\n", slot.Identity.Name, slot.Identity.Email)
		}
	}
	printSlot("Institution:", session.KindInstitution)
	printSlot("User:       ", session.KindUser)

	fmt.Println()
	return nil
}

func cmdWhoami(ctx context.Context) error {
	e, err := newEnv(ctx)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Sessions")
	cyan.Println("  --------")
	for _, kind := range session.Kinds {
		slot := e.store.Slot(kind)
		if !slot.Authenticated {
			fmt.Printf("  %-12s (not signed in)\n", kind)
			continue
		}
		if slot.Identity.Role != "" {
			fmt.Printf("  %-12s %s <%s> [%s]\n", kind, slot.Identity.Name, slot.Identity.Email, slot.Identity.Role)
		} else {
			fmt.Printf("  %-12s %s <%s>\n", kind, slot.Identity.Name, slot.Identity.Email)
		}
	}
	fmt.Println()
	return nil
}

func cmdLogin(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: registrar login <institution|student|faculty|admin>")
	}
	target := args[0]

	e, err := newEnv(ctx)
	if err != nil {
		return err
	}

	kind := session.KindUser
	if target == "institution" {
		kind = session.KindInstitution
	} else if !session.Role(target).Valid() {
		return fmt.Errorf("unknown login target %q (use institution, student, faculty, or admin)", target)
	}

	// Login screens are public-only; an authenticated slot goes to its dashboard
	if d := guard.PublicOnly(e.store.Slot(kind), kind); d.Action == guard.ActionRedirect {
		color.Yellow("Already signed in (%s). Run 'registrar logout %s' first.\n", d.Target, kind)
		return nil
	}

	reader := bufio.NewReader(os.Stdin)
	email := prompt(reader, "Email", "")
	if email == "" {
		return fmt.Errorf("email is required")
	}
	password := prompt(reader, "Password", "")
	if password == "" {
		return fmt.Errorf("password is required")
	}

	if kind == session.KindInstitution {
		resp, err := e.client.InstitutionLogin(ctx, email, password)
		if err != nil {
			return fmt.Errorf("signing in: %w", err)
		}
		identity := &session.Identity{ID: resp.Institution.ID, Name: resp.Institution.Name, Email: resp.Institution.Email}
		if err := e.store.SetAuthenticated(kind, identity, resp.Token); err != nil {
			return err
		}
		color.Green("Signed in as institution %s\n", resp.Institution.Name)
		return nil
	}

	resp, err := e.client.UserLogin(ctx, email, password)
	if err != nil {
		return fmt.Errorf("signing in: %w", err)
	}
	if resp.User.Role != target {
		return fmt.Errorf("account %s has role %s, not %s", email, resp.User.Role, target)
	}
	identity := &session.Identity{
		ID:    resp.User.ID,
		Name:  resp.User.Name,
		Email: resp.User.Email,
		Role:  session.Role(resp.User.Role),
	}
	if err := e.store.SetAuthenticated(kind, identity, resp.Token); err != nil {
		return err
	}
	color.Green("Signed in as %s (%s)\n", resp.User.Name, resp.User.Role)
	return nil
}

func cmdLogout(ctx context.Context, args []string) error {
	e, err := newEnv(ctx)
	if err != nil {
		return err
	}

	kinds := session.Kinds
	if len(args) > 0 {
		switch args[0] {
		case "institution":
			kinds = []session.Kind{session.KindInstitution}
		case "user":
			kinds = []session.Kind{session.KindUser}
		default:
			return fmt.Errorf("unknown slot %q (use institution or user)", args[0])
		}
	}

	for _, kind := range kinds {
		e.store.Logout(kind)
		fmt.Printf("Signed out %s slot.\n", kind)
	}
	return nil
}

func cmdUsers(ctx context.Context, args []string) error {
	subcmd := "list"
	if len(args) > 0 {
		subcmd = args[0]
		args = args[1:]
	}
	if subcmd != "list" && subcmd != "ls" {
		return fmt.Errorf("unknown users subcommand: %s (use list)", subcmd)
	}

	var role string
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--role" || args[i] == "-r":
			if i+1 >= len(args) {
				return fmt.Errorf("--role requires a value")
			}
			role = args[i+1]
			i++
		case strings.HasPrefix(args[i], "--role="):
			role = strings.TrimPrefix(args[i], "--role=")
		default:
			return fmt.Errorf("unexpected argument: %s", args[i])
		}
	}

	e, err := newEnv(ctx)
	if err != nil {
		return err
	}
	token, err := e.institutionCredential()
	if err != nil {
		return err
	}

	users, err := e.client.ListUsers(ctx, token, store.UserRole(role))
	if err != nil {
		e.dropIfUnauthorized(session.KindInstitution, err)
		return fmt.Errorf("listing users: %w", err)
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Users")
	cyan.Println("  -----")
	if len(users) == 0 {
		fmt.Println("  (no users)")
		fmt.Println()
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tNAME\tEMAIL\tROLE\tCREATED")
	fmt.Fprintln(w, "  --\t----\t-----\t----\t-------")
	for _, u := range users {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n",
			truncate(u.ID, 12), truncate(u.Name, 24), truncate(u.Email, 28), u.Role,
			u.CreatedAt.Format("Jan 02 15:04"))
	}
	w.Flush()
	fmt.Println()
	return nil
}

func cmdFaculty(ctx context.Context, args []string) error {
	subcmd := "list"
	if len(args) > 0 {
		subcmd = args[0]
		args = args[1:]
	}

	switch subcmd {
	case "list", "ls":
		return cmdFacultyList(ctx)
	case "show":
		return cmdFacultyShow(ctx, args)
	case "add", "create":
		return cmdFacultyAdd(ctx, args)
	case "deactivate":
		return cmdFacultyDeactivate(ctx, args)
	case "activate":
		return cmdFacultyActivate(ctx, args)
	case "finish":
		return cmdFacultyFinish(ctx, args)
	default:
		return fmt.Errorf("unknown faculty subcommand: %s (use list, show, add, deactivate, activate, finish)", subcmd)
	}
}

func cmdFacultyList(ctx context.Context) error {
	e, err := newEnv(ctx)
	if err != nil {
		return err
	}
	token, err := e.institutionCredential()
	if err != nil {
		return err
	}

	records, err := e.client.ListFaculty(ctx, token)
	if err != nil {
		e.dropIfUnauthorized(session.KindInstitution, err)
		return fmt.Errorf("listing faculty: %w", err)
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Faculty")
	cyan.Println("  -------")
	if len(records) == 0 {
		fmt.Println("  (no faculty records)")
		fmt.Println()
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tDEPARTMENT\tDESIGNATION\tACTIVE\tIN CHARGE\tCOURSES")
	fmt.Fprintln(w, "  --\t----------\t-----------\t------\t---------\t-------")
	for _, f := range records {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%t\t%t\t%d\n",
			truncate(f.ID, 12), truncate(f.DepartmentRef, 16), truncate(f.Designation, 20),
			f.Active, f.InCharge, len(f.Courses))
	}
	w.Flush()
	fmt.Println()
	return nil
}

func cmdFacultyShow(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: registrar faculty show <id>")
	}
	id := args[0]

	e, err := newEnv(ctx)
	if err != nil {
		return err
	}
	token, err := e.institutionCredential()
	if err != nil {
		return err
	}

	f, err := e.client.GetFaculty(ctx, token, id)
	if err != nil {
		e.dropIfUnauthorized(session.KindInstitution, err)
		return fmt.Errorf("fetching faculty: %w", err)
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Faculty Record")
	cyan.Println("  --------------")
	fmt.Printf("  ID:          %s\n", f.ID)
	fmt.Printf("  User ID:     %s\n", f.UserID)
	fmt.Printf("  Department:  %s\n", f.DepartmentRef)
	fmt.Printf("  Designation: %s\n", f.Designation)
	fmt.Printf("  Joined:      %s\n", f.DateOfJoining)
	fmt.Printf("  Active:      %t\n", f.Active)
	fmt.Printf("  In charge:   %t\n", f.InCharge)

	if len(f.Courses) == 0 {
		fmt.Println("  Courses:     (none open)")
		fmt.Println()
		return nil
	}
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  COURSE\tSEMESTER\tBATCH")
	fmt.Fprintln(w, "  ------\t--------\t-----")
	for _, a := range f.Courses {
		fmt.Fprintf(w, "  %s\t%d\t%s\n", a.CourseID, a.Semester, a.Batch)
	}
	w.Flush()
	fmt.Println()
	return nil
}

func cmdFacultyAdd(ctx context.Context, args []string) error {
	var name, email, phone, password, department, designation, joined string

	flags := map[string]*string{
		"--name":        &name,
		"--email":       &email,
		"--phone":       &phone,
		"--password":    &password,
		"--department":  &department,
		"--designation": &designation,
		"--joined":      &joined,
	}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if eq := strings.IndexByte(arg, '='); eq > 0 {
			if dst, ok := flags[arg[:eq]]; ok {
				*dst = arg[eq+1:]
				continue
			}
			return fmt.Errorf("unknown flag: %s", arg[:eq])
		}
		dst, ok := flags[arg]
		if !ok {
			return fmt.Errorf("unknown flag: %s", arg)
		}
		if i+1 >= len(args) {
			return fmt.Errorf("%s requires a value", arg)
		}
		*dst = args[i+1]
		i++
	}

	reader := bufio.NewReader(os.Stdin)
	if name == "" {
		name = prompt(reader, "Name", "")
	}
	if email == "" {
		email = prompt(reader, "Email", "")
	}
	if department == "" {
		department = prompt(reader, "Department", "")
	}
	if designation == "" {
		designation = prompt(reader, "Designation", "Lecturer")
	}
	if joined == "" {
		joined = prompt(reader, "Date of joining", time.Now().UTC().Format("2006-01-02"))
	}
	if password == "" {
		password = prompt(reader, "Initial password", "")
	}
	if name == "" || email == "" || password == "" {
		return fmt.Errorf("name, email, and password are required")
	}

	e, err := newEnv(ctx)
	if err != nil {
		return err
	}
	token, err := e.institutionCredential()
	if err != nil {
		return err
	}

	saga := provision.New(e.client, token, nil)
	view, err := saga.CreateFaculty(ctx,
		provision.UserFields{Name: name, Email: email, Phone: phone, Password: password},
		provision.FacultyFields{DepartmentRef: department, Designation: designation, DateOfJoining: joined},
	)
	if err != nil {
		e.dropIfUnauthorized(session.KindInstitution, err)

		var bindErr *provision.BindingError
		if errors.As(err, &bindErr) && !bindErr.Compensated {
			color.Yellow("Identity %s could not be cleaned up; delete it manually.\n", bindErr.OrphanedIdentity)
		}
		return err
	}

	color.Green("Faculty member provisioned.\n")
	fmt.Printf("  Faculty ID: %s\n", view.ID)
	fmt.Printf("  User ID:    %s\n", view.UserID)
	return nil
}

func cmdFacultyDeactivate(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: registrar faculty deactivate <id> [--finish-all]")
	}
	id := args[0]
	finishAll := false
	for _, arg := range args[1:] {
		if arg == "--finish-all" {
			finishAll = true
			continue
		}
		return fmt.Errorf("unknown flag: %s", arg)
	}

	e, err := newEnv(ctx)
	if err != nil {
		return err
	}
	token, err := e.institutionCredential()
	if err != nil {
		return err
	}

	// Always gate against a fresh record, never a stale listing
	f, err := e.client.GetFaculty(ctx, token, id)
	if err != nil {
		e.dropIfUnauthorized(session.KindInstitution, err)
		return fmt.Errorf("fetching faculty: %w", err)
	}

	gate, err := lifecycle.RequestDeactivation(e.client, token, f, nil)
	if err != nil {
		return err
	}

	if impact := gate.Impact(); len(impact) > 0 {
		color.Yellow("%d open course assignments block this deactivation:\n", len(impact))
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, a := range impact {
			fmt.Fprintf(w, "  %s\tsemester %d\tbatch %s\n", a.CourseID, a.Semester, a.Batch)
		}
		w.Flush()

		if !finishAll {
			fmt.Println()
			fmt.Println("Finish them individually with 'registrar faculty finish', or rerun with --finish-all.")
			return fmt.Errorf("deactivation blocked by %d open assignments", len(impact))
		}

		for _, a := range impact {
			if err := gate.FinishAssignment(ctx, a); err != nil {
				e.dropIfUnauthorized(session.KindInstitution, err)
				return err
			}
			fmt.Printf("  finished %s (semester %d, batch %s)\n", a.CourseID, a.Semester, a.Batch)
		}
	}

	if err := gate.Confirm(ctx); err != nil {
		e.dropIfUnauthorized(session.KindInstitution, err)
		return err
	}
	color.Green("Faculty %s deactivated.\n", id)
	return nil
}

func cmdFacultyActivate(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: registrar faculty activate <id>")
	}
	id := args[0]

	e, err := newEnv(ctx)
	if err != nil {
		return err
	}
	token, err := e.institutionCredential()
	if err != nil {
		return err
	}

	if err := lifecycle.Reactivate(ctx, e.client, token, id); err != nil {
		e.dropIfUnauthorized(session.KindInstitution, err)
		return err
	}
	color.Green("Faculty %s reactivated.\n", id)
	return nil
}

func cmdFacultyFinish(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: registrar faculty finish <id> --course C --semester N --batch B")
	}
	id := args[0]

	var course, batch string
	var semester int
	rest := args[1:]
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "--course", "-c":
			if i+1 >= len(rest) {
				return fmt.Errorf("--course requires a value")
			}
			course = rest[i+1]
			i++
		case "--semester", "-s":
			if i+1 >= len(rest) {
				return fmt.Errorf("--semester requires a value")
			}
			n, err := strconv.Atoi(rest[i+1])
			if err != nil {
				return fmt.Errorf("invalid semester %q", rest[i+1])
			}
			semester = n
			i++
		case "--batch", "-b":
			if i+1 >= len(rest) {
				return fmt.Errorf("--batch requires a value")
			}
			batch = rest[i+1]
			i++
		default:
			return fmt.Errorf("unknown flag: %s", rest[i])
		}
	}
	if course == "" || semester == 0 || batch == "" {
		return fmt.Errorf("--course, --semester, and --batch are required")
	}

	e, err := newEnv(ctx)
	if err != nil {
		return err
	}
	token, err := e.institutionCredential()
	if err != nil {
		return err
	}

	a := store.CourseAssignment{CourseID: course, Semester: semester, Batch: batch}
	if err := e.client.FinishCourse(ctx, token, id, a); err != nil {
		e.dropIfUnauthorized(session.KindInstitution, err)
		return fmt.Errorf("finishing assignment: %w", err)
	}
	color.Green("Assignment %s finished.\n", a.Key())
	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
