// Package cli comandos de línea sobre la capa de aplicación del cliente.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/jhoicas/umbrella-client/internal/application/catalog"
	"github.com/jhoicas/umbrella-client/internal/application/movement"
	"github.com/jhoicas/umbrella-client/internal/application/session"
	"github.com/jhoicas/umbrella-client/internal/application/users"
	"github.com/jhoicas/umbrella-client/internal/domain"
	"github.com/jhoicas/umbrella-client/pkg/apierror"
)

// Códigos de salida.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// App dependencias de los comandos.
type App struct {
	Session  *session.Service
	Catalog  *catalog.Service
	Movement *movement.WorkflowEngine
	Users    *users.Service

	Out io.Writer
	Err io.Writer
	// ReadFile lee la foto del comprobante; por defecto os.ReadFile.
	ReadFile func(name string) ([]byte, error)
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, a *App, args []string) error
}

var commands = []command{
	{"login", "autentica: login -email <email> [-password <senha>]", runLogin},
	{"logout", "encerra a sessão", runLogout},
	{"whoami", "mostra o usuário autenticado", runWhoami},
	{"products", "lista produtos: products [-mine]", runProducts},
	{"branches", "lista filiais", runBranches},
	{"movements", "movimentações disponíveis (motorista)", runMovements},
	{"current", "movimentação em andamento (motorista)", runCurrent},
	{"branch-movements", "movimentações da filial: branch-movements [-status PENDING|IN_PROGRESS|FINISHED]", runBranchMovements},
	{"create-movement", "nova movimentação: create-movement -dest <id> -product <id> -qty <n> [-obs <texto>]", runCreateMovement},
	{"start", "inicia a coleta: start <id>", runStart},
	{"finish", "finaliza a entrega: finish -photo <arquivo> <id>", runFinish},
	{"users", "lista usuários (admin)", runUsers},
	{"user-register", "cadastra motorista ou filial (admin)", runUserRegister},
	{"user-toggle", "ativa/desativa usuário: user-toggle <id>", runUserToggle},
	{"user-delete", "remove usuário: user-delete <id>", runUserDelete},
}

// errUsage argumentos inválidos; Run imprime el uso del comando.
var errUsage = errors.New("uso inválido")

// Run ejecuta el comando args[0] y devuelve el código de salida.
func (a *App) Run(ctx context.Context, args []string) int {
	if a.Out == nil {
		a.Out = os.Stdout
	}
	if a.Err == nil {
		a.Err = os.Stderr
	}
	if a.ReadFile == nil {
		a.ReadFile = os.ReadFile
	}
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" {
		a.usage()
		return ExitUsage
	}
	for _, c := range commands {
		if c.name != args[0] {
			continue
		}
		if c.name != "login" {
			// Cada invocación es un arranque: retoma la sesión guardada y descarta un token vencido.
			if _, err := a.Session.Restore(ctx); err != nil {
				fmt.Fprintf(a.Err, "erro: %s\n", message(err))
				return ExitError
			}
		}
		err := c.run(ctx, a, args[1:])
		switch {
		case err == nil:
			return ExitOK
		case errors.Is(err, flag.ErrHelp):
			return ExitUsage
		case errors.Is(err, errUsage):
			fmt.Fprintf(a.Err, "uso: %s\n", c.summary)
			return ExitUsage
		case errors.Is(err, domain.ErrSessionEnded):
			// El aviso y el reset a Login ya se mostraron.
			return ExitError
		}
		fmt.Fprintf(a.Err, "erro: %s\n", message(err))
		return ExitError
	}
	fmt.Fprintf(a.Err, "comando desconhecido: %s\n", args[0])
	a.usage()
	return ExitUsage
}

func (a *App) usage() {
	fmt.Fprintln(a.Err, "uso: umbrella <comando> [opções]")
	w := tabwriter.NewWriter(a.Err, 0, 0, 2, ' ', 0)
	for _, c := range commands {
		fmt.Fprintf(w, "  %s\t%s\n", c.name, c.summary)
	}
	w.Flush()
}

// message texto para el usuario: validaciones locales tal cual, el resto normalizado.
func message(err error) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	var stock *domain.InsufficientStockError
	if errors.As(err, &stock) {
		return stock.Error()
	}
	if errors.Is(err, domain.ErrEmailAlreadyExists) {
		return users.MsgEmailTaken
	}
	return apierror.Extract(err)
}

func (a *App) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.Err)
	return fs
}

func (a *App) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
}

// idArg único argumento posicional como id positivo.
func idArg(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errUsage
	}
	id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
	if err != nil || id <= 0 {
		return 0, errUsage
	}
	return id, nil
}
