package mockapi

import (
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
)

// CatalogoDemo catálogo chico para desarrollo local.
func CatalogoDemo() Catalogo {
	return Catalogo{
		Productos: map[int64]string{
			1: "Yerba Mate Orgánica 500g",
			2: "Café de Especialidad 250g",
			3: "Azúcar Mascabo 1kg",
		},
		Locales: map[int64]string{1: "Casa Central", 2: "Sucursal Norte"},
		Lugares: map[int64]string{1: "Depósito", 2: "Salón"},
		Estados: map[int64]string{1: "Disponible", 2: "Reservado"},
		Usuarios: map[int64]string{
			1: "Admin",
			7: "María Gómez",
		},
	}
}

// Sembrar carga movimientos de ejemplo: recepciones, ventas y un ajuste, para
// que la consola tenga datos apenas arranca.
func Sembrar(s *Store) error {
	semilla := []CrearInput{
		{Tipo: entity.TipoRecepcionOC, Direccion: entity.DireccionIn, Delta: dec("120"), ProductoID: 1, LocalID: 1, LugarID: 1, EstadoID: 1, UsuarioID: 1, RefTabla: "ordenes_compra", RefID: ptr(1001), Moneda: "ARS"},
		{Tipo: entity.TipoRecepcionOC, Direccion: entity.DireccionIn, Delta: dec("80"), ProductoID: 2, LocalID: 1, LugarID: 1, EstadoID: 1, UsuarioID: 1, RefTabla: "ordenes_compra", RefID: ptr(1001), Moneda: "ARS"},
		{Tipo: entity.TipoVenta, Direccion: entity.DireccionOut, Delta: dec("-12"), ProductoID: 1, LocalID: 1, LugarID: 1, EstadoID: 1, UsuarioID: 7, RefTabla: "ventas", RefID: ptr(5001)},
		{Tipo: entity.TipoVenta, Direccion: entity.DireccionOut, Delta: dec("-3"), ProductoID: 2, LocalID: 1, LugarID: 1, EstadoID: 1, UsuarioID: 7, RefTabla: "ventas", RefID: ptr(5002)},
		{Tipo: entity.TipoCompra, Direccion: entity.DireccionIn, Delta: dec("40"), ProductoID: 3, LocalID: 2, LugarID: 1, EstadoID: 1, UsuarioID: 1, Moneda: "ARS"},
		{Tipo: entity.TipoAjuste, Direccion: entity.DireccionOut, Delta: dec("-2"), ProductoID: 1, LocalID: 1, LugarID: 1, EstadoID: 1, UsuarioID: 1, Notas: "Rotura en depósito"},
		{Tipo: entity.TipoDevolucionCliente, Direccion: entity.DireccionIn, Delta: dec("1"), ProductoID: 2, LocalID: 1, LugarID: 1, EstadoID: 1, UsuarioID: 7, RefTabla: "ventas", RefID: ptr(5002)},
	}
	for _, in := range semilla {
		if _, err := s.Crear(in); err != nil {
			return err
		}
	}
	return nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr(v int64) *int64 { return &v }
