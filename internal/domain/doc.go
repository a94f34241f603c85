// Package domain models the activity calendar display: colors, tracker
// samples, weather snapshots, the collaborator ports the service talks to,
// and the error taxonomy that decides what is recoverable.
//
// # Display Layout
//
// The reference build is a 28-pixel strip folded into a 4×7 grid. Pixel i
// shows the day i days ago, so index 0 is today:
//
//	row 0:  0  1  2  3  4  5  6
//	row 1:  7  8  9 10 11 12 13
//	row 2: 14 15 16 17 18 19 20
//	row 3: 21 22 23 24 25 26 27
//
// Temperature digits are 3×4 glyphs on this grid: the tens digit in columns
// 4–6 and the ones digit shifted four pixels left into columns 0–2.
//
// Weather clips treat the strip as rows × cols where rows is 4 and cols is
// ceil(N/4). Rain and snow use the linear mapping col + row*cols; fog and the
// startup flash walk the strip serpentine, reversing every other row.
//
// # Brightness
//
// Every write carries a brightness in [0, 1]. Out-of-range values are
// clamped, never rejected. Output channels are round(channel * brightness),
// so a scaled channel never exceeds its source value.
//
// # Calendar Rendering
//
// Days with activity light at count/max + 0.05; the offset keeps a single
// event visible next to a busy day. Days without activity use the tracker's
// no-events color at the base brightness, or at half of it when the whole
// window is empty.
//
// # Weather Conditions
//
// Provider strings are matched case-insensitively against clear, clouds,
// rain, drizzle, snow, thunderstorm, mist and fog. Mist and fog share one
// clip. Unknown conditions play nothing but still show the temperature.
//
// # Errors
//
// [TrackerFetchError] and [WeatherFetchError] are recovered at the smallest
// boundary so one failing source never aborts a cycle. [ConfigError] stops
// startup, and [HardwareWriteError] stops the service at any point, because
// without the strip there is nothing left to do. See [IsFatal].
package domain
