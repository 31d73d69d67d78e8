package sales

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Outcome summarizes one reconciled batch. Added is only reported for
// operations that may create records.
type Outcome struct {
	Added   int
	Updated int
	Skipped int
	Errors  []string

	creates bool
}

func (o Outcome) CreateCapable() bool { return o.creates }

func (o Outcome) MarshalJSON() ([]byte, error) {
	errs := o.Errors
	if errs == nil {
		errs = []string{}
	}
	if o.creates {
		return json.Marshal(struct {
			Added   int      `json:"added"`
			Updated int      `json:"updated"`
			Skipped int      `json:"skipped"`
			Errors  []string `json:"errors"`
		}{o.Added, o.Updated, o.Skipped, errs})
	}
	return json.Marshal(struct {
		Updated int      `json:"updated"`
		Skipped int      `json:"skipped"`
		Errors  []string `json:"errors"`
	}{o.Updated, o.Skipped, errs})
}

type DeleteOutcome struct {
	Deleted int      `json:"deleted"`
	Errors  []string `json:"errors"`
}

// tally accumulates per-record results. In aggregating categories failures
// sharing a cause become one message listing the affected numbers.
type tally struct {
	out       Outcome
	aggregate bool
	groups    []*failureGroup
}

type failureGroup struct {
	cause   string
	numbers []string
	message func(count int, numbers string) string
}

func newTally(c Category) *tally {
	return &tally{
		out:       Outcome{Errors: []string{}, creates: c.CanCreate()},
		aggregate: c.Aggregate,
	}
}

func (t *tally) errorf(format string, args ...any) {
	t.out.Errors = append(t.out.Errors, fmt.Sprintf(format, args...))
}

func (t *tally) group(cause, number string, message func(int, string) string) {
	for _, g := range t.groups {
		if g.cause == cause {
			g.numbers = append(g.numbers, number)
			return
		}
	}
	t.groups = append(t.groups, &failureGroup{cause: cause, numbers: []string{number}, message: message})
}

func (t *tally) missingNumero(index int) {
	if t.aggregate {
		t.group("missing", fmt.Sprintf("#%d", index+1), func(n int, list string) string {
			return fmt.Sprintf("%d registros omitidos: sin NUMERO (%s)", n, list)
		})
		return
	}
	t.errorf("Registro %d: falta NUMERO", index+1)
}

func (t *tally) invalidNumero(index int, numero string) {
	if t.aggregate {
		t.group("numero", numero, func(n int, list string) string {
			return fmt.Sprintf("%d registros omitidos: NUMERO inválido (%s)", n, list)
		})
		return
	}
	t.errorf("Registro %d: NUMERO inválido %q", index+1, numero)
}

func (t *tally) notFound(numero string) {
	if t.aggregate {
		t.group("notfound", numero, func(n int, list string) string {
			return fmt.Sprintf("%d números no encontrados (creación no permitida): %s", n, list)
		})
		return
	}
	t.errorf("%s: no encontrado, creación no permitida", numero)
}

func (t *tally) invalidField(numero string, problems []*FieldError) {
	if !t.aggregate {
		msgs := make([]string, 0, len(problems))
		for _, p := range problems {
			msgs = append(msgs, p.Error())
		}
		t.errorf("%s: %s", numero, strings.Join(msgs, "; "))
		return
	}
	p := problems[0]
	t.group("field:"+p.cause(), numero, func(n int, list string) string {
		if p.Reason != "" {
			return fmt.Sprintf("%d registros omitidos: %s inválido (%s): %s", n, p.Field, p.Reason, list)
		}
		return fmt.Sprintf("%d registros omitidos: %s inválido (permitidos: %s): %s", n, p.Field, p.Allowed, list)
	})
}

// rejected is the create path failure: always one message per record.
func (t *tally) rejected(index int, numero string, err error) {
	t.errorf("Registro %d (%s): %v", index+1, numero, err)
}

func (t *tally) storeFailure(numero string) {
	t.errorf("%s: error al guardar en la base de datos", numero)
}

func (t *tally) result() Outcome {
	for _, g := range t.groups {
		t.out.Errors = append(t.out.Errors, g.message(len(g.numbers), strings.Join(g.numbers, ", ")))
	}
	t.groups = nil
	return t.out
}
