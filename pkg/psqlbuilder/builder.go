package psqlbuilder

import "github.com/Masterminds/squirrel"

// Билдеры squirrel с плейсхолдерами PostgreSQL ($1, $2, ...)
var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Select возвращает SELECT-билдер с PostgreSQL плейсхолдерами
func Select(columns ...string) squirrel.SelectBuilder {
	return builder.Select(columns...)
}

// Insert возвращает INSERT-билдер с PostgreSQL плейсхолдерами
func Insert(into string) squirrel.InsertBuilder {
	return builder.Insert(into)
}

// Update возвращает UPDATE-билдер с PostgreSQL плейсхолдерами
func Update(table string) squirrel.UpdateBuilder {
	return builder.Update(table)
}

// Delete возвращает DELETE-билдер с PostgreSQL плейсхолдерами
func Delete(from string) squirrel.DeleteBuilder {
	return builder.Delete(from)
}
