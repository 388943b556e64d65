// ABOUTME: AudioSink package: push-style PCM playback sessions
// ABOUTME: Negotiation, buffering, clock and transport over a device backend
// Package sink implements a push-style audio output: a playback engine
// pushes PCM bytes faster than real time and the sink paces them into
// a device buffer consumed at real time.
//
// A Sink is created over a device backend and opens at most one
// Session at a time. The Session carries the producer/consumer
// contract: BufferFree/PeriodWait to find headroom, Write to queue
// audio, OutputTime for the playback clock, and Pause/Flush/Drain for
// transport control. All transport transitions are totally ordered
// against writes and waits through the session lock, and every
// transition wakes blocked waiters within the 50 ms poll bound.
//
// Example:
//
//	snk := sink.New(output.NewOto())
//	session, err := snk.Open(audio.FormatS16LE, 44100, 2)
//	for len(pcm) > 0 {
//	    free, _ := session.BufferFree()
//	    if free == 0 {
//	        session.PeriodWait()
//	        continue
//	    }
//	    n, _ := session.Write(pcm[:min(free, len(pcm))])
//	    pcm = pcm[n:]
//	}
//	session.Drain()
//	session.Close()
package sink
