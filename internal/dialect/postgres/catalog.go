package postgres

import (
	"github.com/johndauphine/sqldialect/internal/dialect"
	"github.com/johndauphine/sqldialect/internal/sqlfrag"
)

var catalog = dialect.Catalog{
	Tables: func(schema string) *sqlfrag.Fragment {
		return sqlfrag.New(`SELECT table_name AS "TABLE_NAME"
FROM information_schema.tables
WHERE table_schema = ? AND table_type = 'BASE TABLE'
ORDER BY table_name`, schema)
	},

	Columns: func(schema, table string) *sqlfrag.Fragment {
		return sqlfrag.New(`SELECT
    c.column_name AS "COLUMN_NAME",
    CASE WHEN c.data_type = 'USER-DEFINED' THEN c.udt_name ELSE c.data_type END AS "TYPE_NAME",
    COALESCE(c.character_maximum_length, c.numeric_precision, c.datetime_precision, 0) AS "COLUMN_SIZE",
    CASE WHEN c.is_nullable = 'YES' THEN 1 ELSE 0 END AS "NULLABLE",
    c.ordinal_position AS "ORDINAL_POSITION",
    c.column_default AS "COLUMN_DEF",
    col_description(format('%I.%I', c.table_schema, c.table_name)::regclass, c.ordinal_position::int) AS "REMARKS",
    CASE WHEN c.is_identity = 'YES' THEN 'YES' ELSE 'NO' END AS "IS_AUTOINCREMENT"
FROM information_schema.columns c
WHERE c.table_schema = ? AND c.table_name = ?
ORDER BY c.ordinal_position`, schema, table)
	},

	PrimaryKey: func(schema, table string) *sqlfrag.Fragment {
		return sqlfrag.New(`SELECT kcu.column_name AS "COLUMN_NAME", kcu.ordinal_position AS "KEY_SEQ"
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
    ON tc.constraint_name = kcu.constraint_name
    AND tc.table_schema = kcu.table_schema
    AND tc.table_name = kcu.table_name
WHERE tc.constraint_type = 'PRIMARY KEY'
    AND tc.table_schema = ?
    AND tc.table_name = ?
ORDER BY kcu.ordinal_position`, schema, table)
	},
}
