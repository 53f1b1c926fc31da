// Package request содержит общие для обработчиков разбор тела запроса
// и параметров пути.
package request

import (
	"encoding/json"
	"net/http"
	"reflect"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/splitex/internal/http/middlewarectx"
	"github.com/magabrotheeeer/splitex/internal/models"
)

// Decode читает JSON-тело запроса в v.
func Decode(r *http.Request, v any) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return models.Validation("invalid request body")
	}
	return nil
}

// ExpenseID разбирает параметр пути {id}. Некорректный идентификатор
// не может принадлежать ни одному расходу, поэтому это NotFound.
func ExpenseID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, models.NotFound("Expense not found")
	}
	return id, nil
}

// Actor возвращает ID пользователя, положенный в контекст JWTMiddleware.
func Actor(r *http.Request) (uuid.UUID, error) {
	id, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, models.Unauthorized("Missing Authorization Header")
	}
	return id, nil
}

// OptionalString различает отсутствующее поле и явный null.
type OptionalString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON вызывается только для присутствующего в теле поля.
func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// OptionalStringValue отдаёт validator строку из OptionalString, чтобы
// к полю можно было применять обычные теги.
func OptionalStringValue(v reflect.Value) any {
	o, ok := v.Interface().(OptionalString)
	if !ok || o.Value == nil {
		return nil
	}
	return *o.Value
}
