// Package timeseries provides time series data structures and the ingestion
// boundary of featurespace.
//
// # Creating a Series
//
// Create a time series from a slice (indexed 0..n-1):
//
//	values := []float64{100, 102, 105, 103, 108, 110}
//	series := timeseries.New(values)
//
// # Collections and the long format
//
// A Collection holds many named series and converts to and from the long
// format with columns unique_id, ds and y:
//
//	c := timeseries.NewCollection()
//	c.Append(timeseries.Point{ID: "H1", Index: timeseries.StepIndex(0), Value: 605})
//	rows := c.Long()
//	wide := c.Wide()     // one column per series
//	back, _ := wide.Melt()
//
// # Uploads
//
// Uploaded sheets are read with ReadTable (.csv or .xlsx) and normalised
// with ToLong:
//
//	table, err := timeseries.ReadTable("dataset.xlsx", file)
//	if errors.Is(err, errs.ErrUnsupportedFormat) {
//	    // reject the upload
//	}
//	collection, err := timeseries.ToLong(table)
//
// A table with unique_id, ds and y columns is used as is. Otherwise a
// "date" column, when present, becomes the shared index and every other
// column becomes a series; without it the row position is the index.
//
// # Loading from CSV
//
//	c, err := timeseries.LoadCSV("hourly.csv", nil)
//	h1, err := c.Select("H1")
//	err = timeseries.SaveCSV(c, "long.csv")
//
// # Summary statistics
//
//	d := timeseries.Describe(series)
//	fmt.Println(d.Mean, d.Q25, d.Skew)
package timeseries
