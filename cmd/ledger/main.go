// Consola del ledger de movimientos de stock: lista paginada con refresco
// automático, KPIs de la página, y acciones de detalle (ajuste, notas,
// reversa) contra la API remota.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/stock-ledger/internal/apiclient"
	"github.com/tu-usuario/stock-ledger/internal/console"
	"github.com/tu-usuario/stock-ledger/internal/ledger"
	"github.com/tu-usuario/stock-ledger/internal/movimientos"
	"github.com/tu-usuario/stock-ledger/pkg/config"
	"github.com/tu-usuario/stock-ledger/pkg/logger"
)

func main() {
	var (
		flagTipo      = flag.String("tipo", "", "filtro inicial por tipo (ej. AJUSTE)")
		flagDireccion = flag.String("direccion", "", "filtro inicial por dirección (IN|OUT)")
		flagProducto  = flag.Int64("producto", 0, "filtro inicial por producto_id")
		flagLocal     = flag.Int64("local", 0, "filtro inicial por local_id")
		flagQ         = flag.String("q", "", "búsqueda libre inicial")
		flagDesde     = flag.String("desde", "", "fecha_desde inicial (YYYY-MM-DD)")
		flagHasta     = flag.String("hasta", "", "fecha_hasta inicial (YYYY-MM-DD)")
		flagPageSize  = flag.Int("page-size", movimientos.DefaultPageSize, "tamaño de página")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	log.Info().Str("api", cfg.API.BaseURL).Msg("iniciando consola del ledger")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api := apiclient.New(apiclient.Config{
		BaseURL:      cfg.API.BaseURL,
		UsuarioLogID: cfg.API.UsuarioLogID,
		Timeout:      cfg.API.Timeout(),
		Log:          log,
	})
	svc := movimientos.NewService(api)

	// filtros -> poller: el callback de apply dispara el fetch completo.
	// Se cablea por variable porque el poller necesita a su vez los filtros.
	var poller *ledger.Poller
	filtros := ledger.NewFiltroController(ledger.FiltroConfig{
		Debounce: cfg.Poll.Debounce(),
		Typing:   cfg.Poll.Typing(),
		PageSize: *flagPageSize,
	}, func() {
		if poller != nil {
			go poller.Refrescar(ctx)
		}
	})

	var detalle *ledger.DetalleController

	render := func(snap ledger.Snapshot) {
		var b strings.Builder
		b.WriteString("\n" + console.Indicador(poller.Estado(), poller.MotivoPausa(), time.Now()) + "\n")
		b.WriteString(console.PanelKPI(ledger.CalcularKPIs(snap.Rows, snap.Meta)))
		b.WriteString(console.Tabla(snap.Rows, snap.Meta))
		if det := detalle.Detalle(); det != nil {
			b.WriteString("\n" + console.Tarjeta(det))
		}
		if err := detalle.UltimoError(); err != nil {
			fmt.Fprintf(&b, "\n  ! %v\n", err)
		}
		fmt.Print(b.String())
	}

	poller = ledger.NewPoller(svc, filtros, ledger.PollerConfig{
		Interval: cfg.Poll.Interval(),
	}, render, log)
	detalle = ledger.NewDetalleController(svc, poller, poller)

	// Filtros iniciales de los flags: se aplican directo, sin debounce.
	filtros.Editar(func(f *movimientos.ListFilters) {
		f.Tipo = *flagTipo
		f.Direccion = *flagDireccion
		f.ProductoID = *flagProducto
		f.LocalID = *flagLocal
		f.Q = *flagQ
		f.FechaDesde = *flagDesde
		f.FechaHasta = *flagHasta
	})
	filtros.Aplicar()

	go poller.Run(ctx)
	go leerComandos(ctx, cancel, filtros, poller, detalle)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	cancel()
	log.Info().Msg("consola detenida")
}

const ayuda = `comandos:
  filtro <campo> <valor>   edita el draft (tipo, direccion, producto, local, q, desde, hasta)
  aplicar | limpiar        confirma o resetea los filtros
  pagina <n>               cambia de página
  ver <id> | cerrar        abre o cierra el detalle
  ajuste <IN|OUT> <magnitud> <producto> <local> <lugar> <estado> [notas]
  notas <texto>            edita las notas de la entrada abierta
  revertir [notas]         revierte la entrada abierta
  pausa | seguir           suspende o reanuda el refresco
  salir`

func leerComandos(ctx context.Context, cancel context.CancelFunc, filtros *ledger.FiltroController, poller *ledger.Poller, detalle *ledger.DetalleController) {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		partes := strings.Fields(sc.Text())
		if len(partes) == 0 {
			continue
		}
		switch partes[0] {
		case "salir", "q":
			cancel()
			return
		case "ayuda", "h":
			fmt.Println(ayuda)
		case "aplicar":
			filtros.Aplicar()
		case "limpiar":
			filtros.Limpiar()
		case "pausa":
			poller.SetVisible(false)
		case "seguir":
			poller.SetVisible(true)
		case "pagina":
			if len(partes) == 2 {
				if n, err := strconv.Atoi(partes[1]); err == nil {
					filtros.SetPagina(n)
				}
			}
		case "filtro":
			comandoFiltro(filtros, partes[1:])
		case "ver":
			if len(partes) == 2 {
				if id, err := strconv.ParseInt(partes[1], 10, 64); err == nil {
					if err := detalle.Abrir(ctx, id); err != nil {
						fmt.Printf("  ! %v\n", err)
					}
				}
			}
		case "cerrar":
			detalle.Cerrar()
		case "notas":
			comandoNotas(ctx, poller, detalle, strings.Join(partes[1:], " "))
		case "revertir":
			comandoRevertir(ctx, poller, detalle, strings.Join(partes[1:], " "))
		case "ajuste":
			comandoAjuste(ctx, poller, detalle, partes[1:])
		default:
			fmt.Println("comando desconocido; 'ayuda' para la lista")
		}
	}
}

func comandoFiltro(filtros *ledger.FiltroController, args []string) {
	if len(args) < 1 {
		return
	}
	campo := args[0]
	valor := ""
	if len(args) > 1 {
		valor = strings.Join(args[1:], " ")
	}
	filtros.Editar(func(f *movimientos.ListFilters) {
		switch campo {
		case "tipo":
			f.Tipo = valor
		case "direccion":
			f.Direccion = valor
		case "producto":
			f.ProductoID, _ = strconv.ParseInt(valor, 10, 64)
		case "local":
			f.LocalID, _ = strconv.ParseInt(valor, 10, 64)
		case "q":
			f.Q = valor
		case "desde":
			f.FechaDesde = valor
		case "hasta":
			f.FechaHasta = valor
		}
	})
}

func comandoNotas(ctx context.Context, poller *ledger.Poller, detalle *ledger.DetalleController, texto string) {
	poller.AbrirModal(ledger.ModalNotas)
	defer poller.CerrarModal(ledger.ModalNotas)
	if !detalle.PuedeGuardarNotas(texto) {
		fmt.Println("  ! notas sin cambios o inválidas; no se envía nada")
		return
	}
	if err := detalle.GuardarNotas(ctx, texto); err != nil {
		fmt.Printf("  ! %v\n", err)
	}
}

func comandoRevertir(ctx context.Context, poller *ledger.Poller, detalle *ledger.DetalleController, notas string) {
	poller.AbrirModal(ledger.ModalRevertir)
	defer poller.CerrarModal(ledger.ModalRevertir)
	if !detalle.PuedeRevertir() {
		fmt.Println("  ! la entrada ya fue revertida o no hay detalle abierto")
		return
	}
	rev, err := detalle.Revertir(ctx, notas)
	if err != nil {
		fmt.Printf("  ! %v\n", err)
		return
	}
	fmt.Printf("  reversa creada: #%d\n", rev.ID)
}

func comandoAjuste(ctx context.Context, poller *ledger.Poller, detalle *ledger.DetalleController, args []string) {
	if len(args) < 6 {
		fmt.Println("  uso: ajuste <IN|OUT> <magnitud> <producto> <local> <lugar> <estado> [notas]")
		return
	}
	poller.AbrirModal(ledger.ModalAjuste)
	defer poller.CerrarModal(ledger.ModalAjuste)

	magnitud, err := decimal.NewFromString(args[1])
	if err != nil {
		fmt.Println("  ! magnitud inválida")
		return
	}
	atoi := func(s string) int64 { n, _ := strconv.ParseInt(s, 10, 64); return n }
	in := ledger.AjusteInput{
		Direccion:  args[0],
		Magnitud:   magnitud,
		ProductoID: atoi(args[2]),
		LocalID:    atoi(args[3]),
		LugarID:    atoi(args[4]),
		EstadoID:   atoi(args[5]),
		Notas:      strings.Join(args[6:], " "),
	}
	mov, err := detalle.CrearAjuste(ctx, in)
	if err != nil {
		fmt.Printf("  ! %v\n", err)
		return
	}
	fmt.Printf("  ajuste creado: #%d (delta %s)\n", mov.ID, mov.Delta.String())
}
