package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhoicas/umbrella-client/internal/application/movement"
	"github.com/jhoicas/umbrella-client/internal/application/users"
	"github.com/jhoicas/umbrella-client/internal/domain"
	"github.com/jhoicas/umbrella-client/internal/domain/entity"
)

// EnvPassword permite no pasar la contraseña por flag.
const EnvPassword = "UMBRELLA_PASSWORD"

// ── Sesión ────────────────────────────────────────────────────────────────────

func runLogin(ctx context.Context, a *App, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "senha (o "+EnvPassword+")")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *password == "" {
		*password = os.Getenv(EnvPassword)
	}
	sess, err := a.Session.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Bem-vindo, %s (%s)\n", sess.DisplayName, sess.Role.Label())
	return nil
}

func runLogout(ctx context.Context, a *App, _ []string) error {
	return a.Session.Logout(ctx)
}

func runWhoami(ctx context.Context, a *App, _ []string) error {
	sess, err := a.Session.Current(ctx)
	if err != nil {
		return err
	}
	if sess == nil {
		fmt.Fprintln(a.Out, "Nenhum usuário autenticado.")
		return nil
	}
	fmt.Fprintf(a.Out, "%s <%s> %s (id %d)\n", sess.DisplayName, sess.Email, sess.Role.Label(), sess.UserID)
	return nil
}

// ── Catálogo ──────────────────────────────────────────────────────────────────

func runProducts(ctx context.Context, a *App, args []string) error {
	fs := a.flags("products")
	mine := fs.Bool("mine", false, "somente produtos da minha filial")
	if err := fs.Parse(args); err != nil {
		return err
	}
	load := a.Catalog.ListProducts
	if *mine {
		load = a.Catalog.MyProducts
	}
	list, err := load(ctx)
	if err != nil {
		return err
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tPRODUTO\tQUANTIDADE\tFILIAL")
	for _, p := range list {
		branch := ""
		if p.Branch != nil {
			branch = p.Branch.Name
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", p.ID, p.Name, p.Amount, branch)
	}
	return w.Flush()
}

func runBranches(ctx context.Context, a *App, _ []string) error {
	list, err := a.Catalog.ListBranches(ctx)
	if err != nil {
		return err
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tFILIAL\tCIDADE\tCEP")
	for _, b := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", b.ID, b.Name, b.City, b.ZipCode)
	}
	return w.Flush()
}

// ── Movimientos ───────────────────────────────────────────────────────────────

func runMovements(ctx context.Context, a *App, _ []string) error {
	list, err := a.Movement.ListActive(ctx)
	if err != nil {
		return err
	}
	return a.printMovements(list)
}

func runCurrent(ctx context.Context, a *App, _ []string) error {
	m, err := a.Movement.Current(ctx)
	if err != nil {
		return err
	}
	if m == nil {
		fmt.Fprintln(a.Out, "Nenhuma movimentação em andamento.")
		return nil
	}
	return a.printMovements([]*entity.Movement{m})
}

func runBranchMovements(ctx context.Context, a *App, args []string) error {
	fs := a.flags("branch-movements")
	status := fs.String("status", "", "PENDING, IN_PROGRESS ou FINISHED (vazio = todas)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	list, err := a.Movement.ListBranchMovements(ctx, entity.MovementStatus(strings.ToUpper(strings.TrimSpace(*status))))
	if err != nil {
		return err
	}
	return a.printMovements(list)
}

func runCreateMovement(ctx context.Context, a *App, args []string) error {
	fs := a.flags("create-movement")
	dest := fs.Int64("dest", 0, "id da filial de destino")
	product := fs.Int64("product", 0, "id do produto")
	qty := fs.Int("qty", 0, "quantidade")
	obs := fs.String("obs", "", "observações")
	if err := fs.Parse(args); err != nil {
		return err
	}
	origin, err := a.Catalog.MyBranch(ctx)
	if err != nil {
		return err
	}
	m, err := a.Movement.CreateMovement(ctx, movement.CreateInput{
		OriginBranchID:      origin.ID,
		DestinationBranchID: *dest,
		ProductID:           *product,
		Quantity:            *qty,
		Observations:        *obs,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Movimentação %d criada (%s).\n", m.ID, m.Status.Label())
	return nil
}

func runStart(ctx context.Context, a *App, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	if err := a.Movement.StartMovement(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Movimentação %d em andamento.\n", id)
	return nil
}

func runFinish(ctx context.Context, a *App, args []string) error {
	fs := a.flags("finish")
	photo := fs.String("photo", "", "foto do comprovante (jpg)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := idArg(fs.Args())
	if err != nil {
		return err
	}
	// Sin foto equivale a cerrar la cámara: el motor rechaza antes de llamar al backend.
	proof := movement.ProofImage{Cancelled: *photo == ""}
	if *photo != "" {
		data, err := a.ReadFile(*photo)
		if err != nil {
			return fmt.Errorf("ler foto: %w", err)
		}
		proof.Data = data
		proof.FileName = filepath.Base(*photo)
		proof.ContentType = contentTypeOf(*photo)
	}
	if err := a.Movement.FinishMovement(ctx, id, proof); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Movimentação %d finalizada.\n", id)
	return nil
}

func (a *App) printMovements(list []*entity.Movement) error {
	if len(list) == 0 {
		fmt.Fprintln(a.Out, "Nenhuma movimentação.")
		return nil
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tPRODUTO\tQTD\tORIGEM\tDESTINO\tSTATUS")
	for _, m := range list {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%s\n",
			m.ID, productName(m), m.Quantity, branchName(m.OriginBranch, m.OriginBranchID),
			branchName(m.DestinationBranch, m.DestinationBranchID), m.Status.Label())
	}
	return w.Flush()
}

func productName(m *entity.Movement) string {
	if m.Product != nil && m.Product.Name != "" {
		return m.Product.Name
	}
	return fmt.Sprintf("#%d", m.ProductID)
}

func branchName(b *entity.Branch, id int64) string {
	if b != nil && b.Name != "" {
		return b.Name
	}
	return fmt.Sprintf("#%d", id)
}

func contentTypeOf(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".heic":
		return "image/heic"
	default:
		return "image/jpeg"
	}
}

// ── Usuarios (ADMIN) ──────────────────────────────────────────────────────────

func runUsers(ctx context.Context, a *App, _ []string) error {
	list, err := a.Users.List(ctx)
	if err != nil {
		return err
	}
	drivers, branches := users.Partition(list)
	w := a.table()
	fmt.Fprintln(w, "ID\tNOME\tEMAIL\tPERFIL\tATIVO")
	for _, group := range [][]*entity.User{drivers, branches} {
		for _, u := range group {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Profile.Label(), yesNo(u.Status))
		}
	}
	return w.Flush()
}

func runUserRegister(ctx context.Context, a *App, args []string) error {
	fs := a.flags("user-register")
	var in users.RegisterInput
	profile := fs.String("profile", "", "DRIVER ou BRANCH")
	fs.StringVar(&in.Name, "name", "", "nome")
	fs.StringVar(&in.Email, "email", "", "email")
	fs.StringVar(&in.Document, "document", "", "CPF (motorista) ou CNPJ (filial)")
	fs.StringVar(&in.Street, "street", "", "rua")
	fs.StringVar(&in.Number, "number", "", "número")
	fs.StringVar(&in.Complement, "complement", "", "complemento")
	fs.StringVar(&in.Neighborhood, "neighborhood", "", "bairro")
	fs.StringVar(&in.City, "city", "", "cidade")
	fs.StringVar(&in.State, "state", "", "estado")
	fs.StringVar(&in.ZipCode, "zip", "", "CEP")
	fs.StringVar(&in.Password, "password", "", "senha")
	fs.StringVar(&in.ConfirmPassword, "confirm", "", "confirmação da senha")
	if err := fs.Parse(args); err != nil {
		return err
	}
	role, ok := entity.ParseRole(*profile)
	if !ok {
		return domain.NewValidationError("profile", users.MsgInvalidProfile)
	}
	in.Profile = role
	if role == entity.RoleDriver {
		in.Document = users.FormatCPF(in.Document)
	}
	if err := a.Users.Register(ctx, in); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Usuário %s cadastrado.\n", in.Email)
	return nil
}

func runUserToggle(ctx context.Context, a *App, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	if err := a.Users.ToggleStatus(ctx, id); err != nil {
		return err
	}
	u, err := a.Users.Get(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Usuário %d ativo: %s\n", id, yesNo(u.Status))
	return nil
}

func runUserDelete(ctx context.Context, a *App, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	if err := a.Users.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Usuário %d removido.\n", id)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "sim"
	}
	return "não"
}
