// Package directory resuelve emails contra el registro autoritativo de la
// escuela: primero el listado de personal, luego la base de alumnos.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"school-auth/internal/domain"
)

var (
	// ErrNotFound indica que ninguna fuente conoce el email.
	ErrNotFound = errors.New("person not found in school directory")
	// ErrUnavailable envuelve fallos de red o base de datos durante la busqueda.
	ErrUnavailable = errors.New("school directory unavailable")
)

// Resolver resuelve un email a una persona del registro escolar.
type Resolver interface {
	Resolve(ctx context.Context, email string) (domain.Person, error)
}

// Chain consulta los resolvers en orden y devuelve la primera coincidencia.
// Un fallo de infraestructura corta la cadena: nunca se trata como not-found.
type Chain []Resolver

func NewChain(resolvers ...Resolver) Chain {
	return Chain(resolvers)
}

func (c Chain) Resolve(ctx context.Context, email string) (domain.Person, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.Person{}, ErrNotFound
	}
	for _, r := range c {
		if r == nil {
			continue
		}
		person, err := r.Resolve(ctx, email)
		if err == nil {
			return person, nil
		}
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if errors.Is(err, ErrUnavailable) {
			return domain.Person{}, err
		}
		return domain.Person{}, unavailable(err)
	}
	return domain.Person{}, ErrNotFound
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
