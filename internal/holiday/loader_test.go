package holiday

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/traditionalchinese"
)

const legacyCSV = `date,name,isHoliday,holidayCategory,description
2024-09-03,軍人節,是,紀念日及節日,"軍人節, 依國防部規定放假"
2024-10-05,星期六、星期日,是,星期六、星期日,
2024-10-10,國慶日,是,放假之紀念日及節日,全國各機關學校放假一日
2024-02-28,,是,放假之紀念日及節日,
`

const openCSV = "\ufeff西元日期,假日名稱,是否放假,假日種類,備註\r\n" +
	"20241010,國慶日,是,放假之紀念日及節日,\r\n" +
	"20241012,星期六、星期日,是,星期六、星期日,\r\n" +
	"2024101,壞資料,是,,\r\n"

func big5(t *testing.T, s string) string {
	t.Helper()
	out, err := traditionalchinese.Big5.NewEncoder().String(s)
	require.NoError(t, err)
	return out
}

func TestLoadLegacyBig5(t *testing.T) {
	records, err := Load(strings.NewReader(big5(t, legacyCSV)), Legacy(), ZhTW)
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, Record{
		Date:        date(2024, 9, 3),
		Name:        "軍人節",
		IsHoliday:   false,
		Category:    "紀念日及節日",
		Description: "軍人節, 依國防部規定放假",
	}, records[0])

	assert.Equal(t, "星期六", records[1].Name)
	assert.True(t, records[1].IsHoliday)

	assert.Equal(t, "國慶日", records[2].Name)
	assert.True(t, records[2].IsHoliday)
	assert.True(t, records[2].Date.Equal(date(2024, 10, 10)))

	assert.Equal(t, "放假之紀念日及節日", records[3].Name)
}

func TestLoadOpenUTF8WithBOM(t *testing.T) {
	records, err := Load(strings.NewReader(openCSV), Open(), English)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.True(t, records[0].Date.Equal(date(2024, 10, 10)))
	assert.Equal(t, "國慶日", records[0].Name)
	assert.Equal(t, "Saturday", records[1].Name)

	// malformed compact date degrades to the zero date but the row stays
	assert.True(t, records[2].Date.IsZero())
	assert.Equal(t, "壞資料", records[2].Name)
}

func TestLoadHeaderCasing(t *testing.T) {
	csv := "DATE,NAME,ISHOLIDAY,HOLIDAYCATEGORY,DESCRIPTION\n2024-10-10,國慶日,是,放假之紀念日及節日,備註\n"
	records, err := Load(strings.NewReader(csv), Source{
		Name:      "utf8-legacy",
		Encoding:  "utf-8",
		DateShape: DateISO,
		Headers:   Legacy().Headers,
	}, ZhTW)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, Record{
		Date:        date(2024, 10, 10),
		Name:        "國慶日",
		IsHoliday:   true,
		Category:    "放假之紀念日及節日",
		Description: "備註",
	}, records[0])
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		src     Source
		wantErr error
	}{
		{
			name:    "empty stream",
			input:   "",
			src:     Legacy(),
			wantErr: ErrNoHeader,
		},
		{
			name:    "no date column",
			input:   "name,isHoliday\n國慶日,是\n",
			src:     Legacy(),
			wantErr: ErrMissingColumn,
		},
		{
			name:    "unknown encoding",
			input:   legacyCSV,
			src:     Source{Name: "x", Encoding: "klingon", DateShape: DateISO, Headers: Legacy().Headers},
			wantErr: ErrUnknownEncoding,
		},
		{
			name:    "invalid big5 bytes",
			input:   "date,name,isHoliday,holidayCategory,description\n2024-10-10,\xff\xfe\x80,\xa7\x5f,x,\n",
			src:     Legacy(),
			wantErr: ErrDecode,
		},
		{
			name:    "invalid utf-8 bytes",
			input:   "西元日期,假日名稱,是否放假,假日種類,備註\n20241010,\xff\xfe,是,x,\n",
			src:     Open(),
			wantErr: ErrDecode,
		},
		{
			name:    "invalid utf-8 in header",
			input:   "西元日期,\xc3\x28,是否放假\n20241010,國慶日,是\n",
			src:     Open(),
			wantErr: ErrDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.input), tt.src, ZhTW)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadMalformedCSV(t *testing.T) {
	tests := map[string]string{
		"bare quote":   "date,name\n2024-10-10,國\"慶日\n",
		"unterminated": "date,name\n2024-10-10,\"國慶日\n",
		"ragged row":   "date,name\n2024-10-10,國慶日,extra\n",
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			src := Legacy()
			src.Encoding = "utf-8"
			_, err := Load(strings.NewReader(input), src, ZhTW)
			assert.Error(t, err)
		})
	}
}

func TestLoadSource(t *testing.T) {
	body := big5(t, legacyCSV)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/calendar.csv" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	src := Legacy()
	src.URL = srv.URL + "/calendar.csv"
	records, err := LoadSource(context.Background(), srv.Client(), src, ZhTW)
	require.NoError(t, err)
	assert.Len(t, records, 4)

	src.URL = srv.URL + "/missing.csv"
	_, err = LoadSource(context.Background(), srv.Client(), src, ZhTW)
	assert.ErrorIs(t, err, ErrHTTPGet)

	src.URL = ""
	_, err = LoadSource(context.Background(), srv.Client(), src, ZhTW)
	assert.ErrorIs(t, err, ErrNoURL)
}
