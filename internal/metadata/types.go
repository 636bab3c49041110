package metadata

import "strings"

// SQL type codes as reported in the DATA_TYPE column of driver metadata.
// The values are the X/Open CLI (ODBC) type codes.
const (
	TypeBit                   = -7
	TypeTinyInt               = -6
	TypeSmallInt              = 5
	TypeInteger               = 4
	TypeBigInt                = -5
	TypeFloat                 = 6
	TypeReal                  = 7
	TypeDouble                = 8
	TypeNumeric               = 2
	TypeDecimal               = 3
	TypeChar                  = 1
	TypeVarChar               = 12
	TypeLongVarChar           = -1
	TypeDate                  = 91
	TypeTime                  = 92
	TypeTimestamp             = 93
	TypeBinary                = -2
	TypeVarBinary             = -3
	TypeLongVarBinary         = -4
	TypeNull                  = 0
	TypeOther                 = 1111
	TypeBlob                  = 2004
	TypeClob                  = 2005
	TypeBoolean               = 16
	TypeNChar                 = -15
	TypeNVarChar              = -9
	TypeLongNVarChar          = -16
	TypeNClob                 = 2011
	TypeSQLXML                = 2009
	TypeTimeWithTimezone      = 2013
	TypeTimestampWithTimezone = 2014
)

var sqlTypeNames = map[int]string{
	TypeBit:                   "BIT",
	TypeTinyInt:               "TINYINT",
	TypeSmallInt:              "SMALLINT",
	TypeInteger:               "INTEGER",
	TypeBigInt:                "BIGINT",
	TypeFloat:                 "FLOAT",
	TypeReal:                  "REAL",
	TypeDouble:                "DOUBLE",
	TypeNumeric:               "NUMERIC",
	TypeDecimal:               "DECIMAL",
	TypeChar:                  "CHAR",
	TypeVarChar:               "VARCHAR",
	TypeLongVarChar:           "LONGVARCHAR",
	TypeDate:                  "DATE",
	TypeTime:                  "TIME",
	TypeTimestamp:             "TIMESTAMP",
	TypeBinary:                "BINARY",
	TypeVarBinary:             "VARBINARY",
	TypeLongVarBinary:         "LONGVARBINARY",
	TypeNull:                  "NULL",
	TypeOther:                 "OTHER",
	TypeBlob:                  "BLOB",
	TypeClob:                  "CLOB",
	TypeBoolean:               "BOOLEAN",
	TypeNChar:                 "NCHAR",
	TypeNVarChar:              "NVARCHAR",
	TypeLongNVarChar:          "LONGNVARCHAR",
	TypeNClob:                 "NCLOB",
	TypeSQLXML:                "SQLXML",
	TypeTimeWithTimezone:      "TIME_WITH_TIMEZONE",
	TypeTimestampWithTimezone: "TIMESTAMP_WITH_TIMEZONE",
}

// Native type names that don't match a standard name verbatim.
var nativeTypeCodes = map[string]int{
	"int":                         TypeInteger,
	"int2":                        TypeSmallInt,
	"int4":                        TypeInteger,
	"int8":                        TypeBigInt,
	"serial":                      TypeInteger,
	"smallserial":                 TypeSmallInt,
	"bigserial":                   TypeBigInt,
	"float4":                      TypeReal,
	"float8":                      TypeDouble,
	"double precision":            TypeDouble,
	"bool":                        TypeBoolean,
	"text":                        TypeVarChar,
	"varchar":                     TypeVarChar,
	"character varying":           TypeVarChar,
	"character":                   TypeChar,
	"bpchar":                      TypeChar,
	"ntext":                       TypeLongNVarChar,
	"datetime":                    TypeTimestamp,
	"datetime2":                   TypeTimestamp,
	"smalldatetime":               TypeTimestamp,
	"datetimeoffset":              TypeTimestampWithTimezone,
	"timestamptz":                 TypeTimestampWithTimezone,
	"timestamp without time zone": TypeTimestamp,
	"timestamp with time zone":    TypeTimestampWithTimezone,
	"timetz":                      TypeTimeWithTimezone,
	"money":                       TypeDecimal,
	"smallmoney":                  TypeDecimal,
	"uniqueidentifier":            TypeChar,
	"uuid":                        TypeOther,
	"bytea":                       TypeBinary,
	"image":                       TypeLongVarBinary,
	"xml":                         TypeSQLXML,
	"mediumint":                   TypeInteger,
	"longtext":                    TypeLongVarChar,
	"mediumtext":                  TypeLongVarChar,
	"tinytext":                    TypeVarChar,
	"longblob":                    TypeLongVarBinary,
	"mediumblob":                  TypeLongVarBinary,
	"tinyblob":                    TypeVarBinary,
	"json":                        TypeOther,
	"jsonb":                       TypeOther,
}

// SQLTypeName returns the standard name for a type code, or "OTHER".
func SQLTypeName(code int) string {
	if name, ok := sqlTypeNames[code]; ok {
		return name
	}
	return sqlTypeNames[TypeOther]
}

// SQLTypeFromName maps a native or standard type name to a type code.
// Length and precision suffixes ("varchar(40)") are ignored.
func SQLTypeFromName(name string) int {
	n := strings.ToLower(strings.TrimSpace(name))
	if i := strings.IndexByte(n, '('); i >= 0 {
		n = strings.TrimSpace(n[:i])
	}
	if code, ok := nativeTypeCodes[n]; ok {
		return code
	}
	upper := strings.ToUpper(n)
	for code, std := range sqlTypeNames {
		if std == upper {
			return code
		}
	}
	return TypeOther
}
